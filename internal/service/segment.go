package service

import (
	"time"

	"github.com/unclebandit/dojo-retention-backend/internal/model"
)

const newMemberWindow = 45 * 24 * time.Hour

// MatchesSegment reports whether member belongs to segment at now. Unknown
// segments match nobody.
func MatchesSegment(member model.Member, segment model.Segment, now time.Time) bool {
	switch segment {
	case model.SegmentAll:
		return true
	case model.SegmentHighRisk:
		return member.RiskLevel == model.RiskHigh
	case model.SegmentPendingPayments:
		return member.PaymentStatus == model.PaymentPending || member.PaymentStatus == model.PaymentOverdue
	case model.SegmentNewMembers:
		return now.Sub(member.JoinDate) <= newMemberWindow
	case model.SegmentAdvanced:
		return member.Belt == model.BeltBlack || member.Belt == model.BeltBrown
	default:
		return false
	}
}

// FilterBySegment keeps the members of segment, preserving directory order.
func FilterBySegment(members []model.Member, segment model.Segment, now time.Time) []model.Member {
	out := []model.Member{}
	for _, m := range members {
		if MatchesSegment(m, segment, now) {
			out = append(out, m)
		}
	}
	return out
}
