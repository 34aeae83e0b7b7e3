package db

import (
	"context"
	"time"

	"github.com/planora/planora/internal/models"
)

// Dashboard is everything the home screen shows for one user
type Dashboard struct {
	User              *models.User     `json:"user"`
	Stats             *TaskStats       `json:"stats"`
	Projects          []models.Project `json:"projects"`
	Tasks             []DashboardTask  `json:"tasks"`
	Calendar          []CalendarEntry  `json:"calendar_tasks"`
	FocusMinutesToday int              `json:"focus_minutes_today"`
	FocusMinutesWeek  int              `json:"focus_minutes_week"`
}

// DashboardTask is a task flattened with its first project id
type DashboardTask struct {
	models.Task
	ProjectID *uint `json:"project_id"`
}

// CalendarEntry places a task with a due date on the calendar
type CalendarEntry struct {
	ID        uint   `json:"id"`
	Title     string `json:"title"`
	Date      string `json:"date"` // YYYY-MM-DD
	Status    string `json:"status"`
	Priority  string `json:"priority"`
	ProjectID *uint  `json:"project_id"`
}

// DashboardData collects the dashboard for a user as of now
func (s *Store) DashboardData(ctx context.Context, userID uint, now time.Time) (*Dashboard, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats, err := s.TaskStats(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	var projects []models.Project
	err = s.conn(ctx).Where("user_id = ? AND status = ?", userID, models.ProjectActive).
		Order("created_at DESC").Order("id DESC").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}

	var tasks []models.Task
	err = s.conn(ctx).Preload("Projects").Preload("Tags").
		Where("user_id = ?", userID).
		Scopes(byDueDate).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		User:     user,
		Stats:    stats,
		Projects: projects,
		Tasks:    make([]DashboardTask, 0, len(tasks)),
		Calendar: []CalendarEntry{},
	}
	for _, t := range tasks {
		pid := t.FirstProjectID()
		d.Tasks = append(d.Tasks, DashboardTask{Task: t, ProjectID: pid})
		if t.DueDate != nil {
			d.Calendar = append(d.Calendar, CalendarEntry{
				ID:        t.ID,
				Title:     t.Title,
				Date:      t.DueDate.UTC().Format("2006-01-02"),
				Status:    t.Status,
				Priority:  t.Priority,
				ProjectID: pid,
			})
		}
	}

	today := StartOfDay(now)
	if d.FocusMinutesToday, err = s.FocusMinutes(ctx, userID, today); err != nil {
		return nil, err
	}
	if d.FocusMinutesWeek, err = s.FocusMinutes(ctx, userID, StartOfWeek(now)); err != nil {
		return nil, err
	}

	return d, nil
}

// RoadmapData returns every project of the user, newest first, each with its tasks by due date
func (s *Store) RoadmapData(ctx context.Context, userID uint) ([]models.Project, error) {
	var projects []models.Project
	err := s.conn(ctx).Where("user_id = ?", userID).
		Preload("Tasks", byDueDate).
		Order("created_at DESC").Order("id DESC").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// StartOfDay returns midnight UTC of t's UTC date
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// StartOfWeek returns midnight UTC of the Monday of t's week
func StartOfWeek(t time.Time) time.Time {
	day := StartOfDay(t)
	weekday := int(day.Weekday())
	if weekday == 0 { // Sunday
		weekday = 7
	}
	return day.AddDate(0, 0, -(weekday - 1))
}
