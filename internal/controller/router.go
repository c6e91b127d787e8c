package controller

import "github.com/go-chi/chi/v5"

// Controllers bundles every controller mounted by Mount.
type Controllers struct {
	Campaigns *CampaignController
	Templates *TemplateController
	Schedules *ScheduleController
	Members   *MemberController
	FollowUps *FollowUpController
}

func Mount(r chi.Router, c Controllers) {
	r.Get("/members", c.Members.List)
	r.Route("/members/{id}", func(r chi.Router) {
		r.Get("/metrics", c.Members.Metrics)
		r.Post("/attendance", c.Members.RecordAttendance)
		r.Get("/messages", c.Members.Messages)
		r.Post("/messages", c.Members.SaveMessage)
		r.Post("/drafts/motivation", c.Members.DraftMotivation)
		r.Post("/drafts/insight", c.Members.DraftInsight)
		r.Get("/feedback", c.Members.Feedback)
		r.Post("/feedback", c.Members.SubmitFeedback)

		r.Get("/tasks", c.FollowUps.Tasks)
		r.Post("/tasks", c.FollowUps.AddTask)
		r.Post("/tasks/{taskId}/complete", c.FollowUps.Complete)
		r.Post("/tasks/{taskId}/snooze", c.FollowUps.Snooze)
		r.Get("/interactions", c.FollowUps.Interactions)
		r.Post("/interactions", c.FollowUps.LogContact)
	})

	r.Get("/attendance/export", c.Members.ExportAttendance)
	r.Delete("/attendance", c.Members.ResetAttendance)
	r.Get("/segments/{segment}/members", c.Campaigns.SegmentMembers)

	r.Get("/templates", c.Templates.List)
	r.Post("/templates", c.Templates.Create)
	r.Get("/templates/{id}", c.Templates.Get)
	r.Put("/templates/{id}", c.Templates.Replace)
	r.Post("/templates/{id}/preview", c.Templates.Preview)

	r.Get("/schedules", c.Schedules.List)
	r.Post("/schedules", c.Schedules.Create)
	r.Post("/schedules/{id}/toggle", c.Schedules.Toggle)
	r.Post("/schedules/{id}/executed", c.Schedules.MarkExecuted)
	r.Delete("/schedules/{id}", c.Schedules.Delete)

	r.Post("/campaigns/draft", c.Campaigns.Draft)
	r.Post("/campaigns/execute", c.Campaigns.Execute)
	r.Get("/campaigns/runs", c.Campaigns.ListRuns)
}
