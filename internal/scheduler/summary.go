package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dcastillo/tasktrail-api/internal/domain"
	"github.com/dcastillo/tasktrail-api/internal/platform/mail"
	"github.com/dcastillo/tasktrail-api/internal/store"
)

const summarySubject = "Daily task summary"

// summaryWindow is how far back the summary looks for task activity.
const summaryWindow = 24 * time.Hour

// DailySummarizer mails each involved user a digest of the tasks they
// created or are assigned to that changed in the last day. Summaries go
// straight through the mailer rather than the job queue: a lost digest is
// harmless and the next run covers the gap.
type DailySummarizer struct {
	tasks    store.TaskStore
	users    store.UserStore
	mailer   mail.Mailer
	timeFunc func() time.Time
	logger   *slog.Logger
}

// NewDailySummarizer creates a DailySummarizer.
func NewDailySummarizer(
	tasks store.TaskStore,
	users store.UserStore,
	mailer mail.Mailer,
	logger *slog.Logger,
) *DailySummarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &DailySummarizer{
		tasks:    tasks,
		users:    users,
		mailer:   mailer,
		timeFunc: time.Now,
		logger:   logger.With("component", "daily_summarizer"),
	}
}

// SummarizeDaily sends one digest email per involved user covering tasks
// updated in the last 24 hours. Users that vanished since the update are
// skipped. Returns the number of digests sent; per-user send failures are
// logged and the first one is returned after all users were attempted.
func (s *DailySummarizer) SummarizeDaily(ctx context.Context) (int, error) {
	since := s.timeFunc().UTC().Add(-summaryWindow)

	tasks, err := s.tasks.ListUpdatedSince(ctx, since)
	if err != nil {
		s.logger.Error("failed to list recently updated tasks", "error", err)
		return 0, err
	}
	if len(tasks) == 0 {
		s.logger.Info("daily summary found no activity")
		return 0, nil
	}

	perUser := groupTasksByUser(tasks)

	// Deterministic send order.
	userIDs := make([]uuid.UUID, 0, len(perUser))
	for userID := range perUser {
		userIDs = append(userIDs, userID)
	}
	sort.Slice(userIDs, func(i, j int) bool {
		return userIDs[i].String() < userIDs[j].String()
	})

	var (
		sent     int
		firstErr error
	)

	for _, userID := range userIDs {
		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			s.logger.Debug("skipping summary for missing user",
				"user_id", userID,
				"error", err)
			continue
		}

		body := renderSummaryBody(perUser[userID])
		if err := s.mailer.Send(ctx, summarySubject, body, []string{user.Email}); err != nil {
			s.logger.Error("failed to send daily summary",
				"error", err,
				"user_id", userID)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		sent++
	}

	s.logger.Info("daily summary finished",
		"tasks", len(tasks),
		"recipients", len(perUser),
		"sent", sent)

	return sent, firstErr
}

// groupTasksByUser maps each creator and assignee to the tasks they are
// involved in, without duplicates.
func groupTasksByUser(tasks []*domain.Task) map[uuid.UUID][]*domain.Task {
	perUser := make(map[uuid.UUID][]*domain.Task)
	for _, task := range tasks {
		seen := map[uuid.UUID]struct{}{task.CreatedBy: {}}
		perUser[task.CreatedBy] = append(perUser[task.CreatedBy], task)
		for _, assignee := range task.AssigneeIDs {
			if _, ok := seen[assignee]; ok {
				continue
			}
			seen[assignee] = struct{}{}
			perUser[assignee] = append(perUser[assignee], task)
		}
	}
	return perUser
}

func renderSummaryBody(tasks []*domain.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d of your tasks changed in the last 24 hours:\n", len(tasks))
	for _, task := range tasks {
		fmt.Fprintf(&b, "- %s (%s, due %s)\n",
			task.Title, task.Status, task.DueDate.Format("2006-01-02"))
	}
	return b.String()
}
