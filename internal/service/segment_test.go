package service_test

import (
	"testing"

	"github.com/unclebandit/dojo-retention-backend/internal/model"
	"github.com/unclebandit/dojo-retention-backend/internal/service"
)

func TestMatchesSegment(t *testing.T) {
	veteran := model.Member{
		ID:            "m1",
		Belt:          model.BeltBlack,
		PaymentStatus: model.PaymentPaid,
		RiskLevel:     model.RiskLow,
		JoinDate:      testNow.AddDate(-3, 0, 0),
	}
	rookie := model.Member{
		ID:            "m2",
		Belt:          model.BeltWhite,
		PaymentStatus: model.PaymentOverdue,
		RiskLevel:     model.RiskHigh,
		JoinDate:      testNow.AddDate(0, 0, -10),
	}

	tests := []struct {
		segment model.Segment
		member  model.Member
		want    bool
	}{
		{model.SegmentAll, veteran, true},
		{model.SegmentHighRisk, rookie, true},
		{model.SegmentHighRisk, veteran, false},
		{model.SegmentPendingPayments, rookie, true},
		{model.SegmentPendingPayments, veteran, false},
		{model.SegmentNewMembers, rookie, true},
		{model.SegmentNewMembers, veteran, false},
		{model.SegmentAdvanced, veteran, true},
		{model.SegmentAdvanced, rookie, false},
		{model.Segment("VIP"), veteran, false},
	}
	for _, tt := range tests {
		if got := service.MatchesSegment(tt.member, tt.segment, testNow); got != tt.want {
			t.Errorf("%s/%s: expected %v, got %v", tt.segment, tt.member.ID, tt.want, got)
		}
	}
}

func TestNewMemberWindowIsFortyFiveDays(t *testing.T) {
	edge := model.Member{JoinDate: testNow.AddDate(0, 0, -45)}
	past := model.Member{JoinDate: testNow.AddDate(0, 0, -46)}
	if !service.MatchesSegment(edge, model.SegmentNewMembers, testNow) {
		t.Error("member who joined 45 days ago should still be new")
	}
	if service.MatchesSegment(past, model.SegmentNewMembers, testNow) {
		t.Error("member who joined 46 days ago should not be new")
	}
}

func TestFilterBySegmentKeepsOrder(t *testing.T) {
	members := []model.Member{
		{ID: "a", RiskLevel: model.RiskHigh},
		{ID: "b", RiskLevel: model.RiskLow},
		{ID: "c", RiskLevel: model.RiskHigh},
	}
	got := service.FilterBySegment(members, model.SegmentHighRisk, testNow)
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Errorf("unexpected result %+v", got)
	}
	if empty := service.FilterBySegment(nil, model.SegmentAll, testNow); empty == nil {
		t.Error("expected non-nil empty slice")
	}
}
