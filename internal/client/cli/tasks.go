package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/taskdesk/internal/client/models"
	"github.com/dmitrijs2005/taskdesk/internal/client/services"
)

// Task list filters.
const (
	FilterAll    = "all"
	FilterActive = "active"
	FilterDone   = "done"
)

func filterTasks(tasks []models.Task, filter string) ([]models.Task, error) {
	var keep func(models.Task) bool
	switch strings.ToLower(filter) {
	case "", FilterAll:
		return tasks, nil
	case FilterActive, "open", "pending":
		keep = func(t models.Task) bool { return !t.Completed }
	case FilterDone, "completed":
		keep = func(t models.Task) bool { return t.Completed }
	default:
		return nil, fmt.Errorf("unknown filter %q (want all, active or done)", filter)
	}

	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (a *App) loadTasks(ctx context.Context) models.Loading[[]models.Task] {
	state := models.Pending[[]models.Task]()
	a.log.Debug(ctx, "loading tasks", "state", state.State)

	tasks, err := a.tasks.List(ctx)
	if err != nil {
		return models.Failed[[]models.Task](err, ErrorText(err))
	}
	return models.Succeeded(tasks)
}

// ListTasks prints the task table, optionally filtered by completion.
func (a *App) ListTasks(ctx context.Context, filter string) error {
	return a.protect(ctx, func(ctx context.Context) error {
		if _, err := filterTasks(nil, filter); err != nil {
			return err
		}
		view := a.loadTasks(ctx)
		if view.State == models.StateError {
			return view.Err
		}
		tasks, _ := filterTasks(view.Data, filter)
		return renderTasks(a.out, tasks)
	})
}

func renderTasks(w io.Writer, tasks []models.Task) error {
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(w, "No tasks yet. Add one with `add <title>`.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDONE\tTITLE\tCREATED")
	for _, t := range tasks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", services.ShortID(t.ID), checkbox(t.Completed), oneLine(t.Title), t.CreatedAt)
	}
	return tw.Flush()
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

func oneLine(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > 60 {
		return s[:57] + "..."
	}
	return s
}

// Dashboard greets the user and summarizes their tasks.
func (a *App) Dashboard(ctx context.Context) error {
	return a.protect(ctx, func(ctx context.Context) error {
		fmt.Fprintf(a.out, "Welcome, %s!\n", a.session.CurrentUser().DisplayName())

		view := a.loadTasks(ctx)
		if view.State == models.StateError {
			fmt.Fprintf(a.out, "Tasks unavailable: %s\n", view.Message)
			return nil
		}
		done := 0
		for _, t := range view.Data {
			if t.Completed {
				done++
			}
		}
		fmt.Fprintf(a.out, "%d tasks, %d done, %d open\n", len(view.Data), done, len(view.Data)-done)
		return nil
	})
}

// AddTask creates a task. Without a title both title and description are
// prompted for.
func (a *App) AddTask(ctx context.Context, title, description string) error {
	return a.protect(ctx, func(ctx context.Context) error {
		var err error
		if strings.TrimSpace(title) == "" {
			if title, err = getSimpleText(a.reader, "Enter title", a.out); err != nil {
				return err
			}
			if description, err = getMultiline(a.reader, "Enter description (optional)", a.out); err != nil {
				return err
			}
		}

		in := models.TaskInput{Title: title}
		if description != "" {
			in.Description = &description
		}
		t, err := a.tasks.Create(ctx, in)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Created %s %s\n", services.ShortID(t.ID), t.Title)
		return nil
	})
}

func (a *App) resolve(ctx context.Context, ref string) (string, error) {
	if strings.TrimSpace(ref) == "" {
		var err error
		if ref, err = getSimpleText(a.reader, "Enter task id", a.out); err != nil {
			return "", err
		}
	}
	return a.tasks.ResolveID(ctx, ref)
}

// ShowTask prints one task in full.
func (a *App) ShowTask(ctx context.Context, ref string) error {
	return a.protect(ctx, func(ctx context.Context) error {
		id, err := a.resolve(ctx, ref)
		if err != nil {
			return err
		}
		t, err := a.tasks.Get(ctx, id)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "ID:\t%s\n", t.ID)
		fmt.Fprintf(w, "Title:\t%s\n", t.Title)
		fmt.Fprintf(w, "Done:\t%s\n", checkbox(t.Completed))
		if d := t.Details(); d != "" {
			fmt.Fprintf(w, "Description:\t%s\n", strings.ReplaceAll(d, "\n", "\n\t"))
		}
		if t.CreatedAt != "" {
			fmt.Fprintf(w, "Created:\t%s\n", t.CreatedAt)
		}
		if t.UpdatedAt != "" {
			fmt.Fprintf(w, "Updated:\t%s\n", t.UpdatedAt)
		}
		return w.Flush()
	})
}

// EditTask applies upd. An empty upd switches to prompting: blank answers
// keep the current values.
func (a *App) EditTask(ctx context.Context, ref string, upd models.TaskUpdate) error {
	return a.protect(ctx, func(ctx context.Context) error {
		id, err := a.resolve(ctx, ref)
		if err != nil {
			return err
		}

		if upd.Empty() {
			current, err := a.tasks.Get(ctx, id)
			if err != nil {
				return err
			}
			if upd, err = a.promptUpdate(current); err != nil {
				return err
			}
		}

		t, err := a.tasks.Update(ctx, id, upd)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Updated %s %s\n", services.ShortID(t.ID), t.Title)
		return nil
	})
}

func (a *App) promptUpdate(current *models.Task) (models.TaskUpdate, error) {
	var upd models.TaskUpdate

	title, err := getSimpleText(a.reader, fmt.Sprintf("New title (blank keeps %q)", current.Title), a.out)
	if err != nil {
		return upd, err
	}
	if title != "" && title != current.Title {
		upd.Title = &title
	}

	desc, err := getMultiline(a.reader, "New description (blank keeps the current one)", a.out)
	if err != nil {
		return upd, err
	}
	if desc != "" && desc != current.Details() {
		upd.Description = &desc
	}
	return upd, nil
}

// ToggleTask flips the completed flag.
func (a *App) ToggleTask(ctx context.Context, ref string) error {
	return a.protect(ctx, func(ctx context.Context) error {
		id, err := a.resolve(ctx, ref)
		if err != nil {
			return err
		}
		t, err := a.tasks.Toggle(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s %s %s\n", checkbox(t.Completed), services.ShortID(t.ID), t.Title)
		return nil
	})
}

// DeleteTask removes a task after confirmation unless force is set.
func (a *App) DeleteTask(ctx context.Context, ref string, force bool) error {
	return a.protect(ctx, func(ctx context.Context) error {
		id, err := a.resolve(ctx, ref)
		if err != nil {
			return err
		}
		if !force {
			ok, err := confirm(a.reader, fmt.Sprintf("Delete task %s?", services.ShortID(id)), a.out)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(a.out, "Cancelled")
				return nil
			}
		}
		if err := a.tasks.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Deleted %s\n", services.ShortID(id))
		return nil
	})
}
