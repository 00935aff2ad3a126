package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskdesk/internal/client/client"
	"github.com/dmitrijs2005/taskdesk/internal/client/guard"
	"github.com/dmitrijs2005/taskdesk/internal/client/models"
	"github.com/dmitrijs2005/taskdesk/internal/client/services"
	"github.com/dmitrijs2005/taskdesk/internal/client/session"
	"github.com/dmitrijs2005/taskdesk/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewApp_InvalidBaseURL(t *testing.T) {
	_, err := NewApp(context.Background(), testConfig("localhost:8000", ""), nil)
	require.Error(t, err)
}

func TestNewApp_UnusableStoreFallsBackToMemory(t *testing.T) {
	b := newTaskBackend(t)
	stubPassword(t, testPassword)

	// a directory cannot be opened as a database file
	cfg := testConfig(b.URL(), t.TempDir())
	a, _ := newTestApp(t, cfg, "")
	a.Start(context.Background())

	require.True(t, a.store.Available())
	require.NoError(t, a.Login(context.Background(), testEmail))
	require.NoError(t, a.ListTasks(context.Background(), ""))
}

func TestApp_LoginPersistsAcrossRuns(t *testing.T) {
	b := newTaskBackend(t)
	stubPassword(t, testPassword)
	ctx := context.Background()
	cfg := testConfig(b.URL(), storePath(t))

	first, out := newTestApp(t, cfg, "")
	first.Start(ctx)
	require.NoError(t, first.Login(ctx, testEmail))
	assert.Contains(t, out.String(), "Signed in as "+testEmail)
	assert.Equal(t, common.TodosPath, first.nav.Current())
	require.NoError(t, first.Close())

	second, out := newTestApp(t, cfg, "")
	second.Start(ctx)
	require.NoError(t, second.ListTasks(ctx, ""))
	assert.Contains(t, out.String(), "No tasks yet")
	assert.True(t, second.isLoggedIn())
}

func TestApp_LoginPromptsForEmail(t *testing.T) {
	b := newTaskBackend(t)
	stubPassword(t, testPassword)

	a, out := newTestApp(t, testConfig(b.URL(), storePath(t)), testEmail+"\n")
	a.Start(context.Background())

	require.NoError(t, a.Login(context.Background(), ""))
	assert.Contains(t, out.String(), "Enter email")
	assert.True(t, a.isLoggedIn())
}

func TestApp_LoginRejected(t *testing.T) {
	b := newTaskBackend(t)
	stubPassword(t, "wrong")

	a, _ := newTestApp(t, testConfig(b.URL(), storePath(t)), "")
	a.Start(context.Background())

	err := a.Login(context.Background(), testEmail)
	require.Error(t, err)

	var authErr *session.AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, session.ReasonInvalidCredentials, authErr.Reason)
	assert.Equal(t, "Incorrect email or password", ErrorText(err))
	assert.False(t, a.isLoggedIn())
	assert.Empty(t, a.store.Get(context.Background()))
}

func TestApp_LoginValidation(t *testing.T) {
	b := newTaskBackend(t)
	stubPassword(t, testPassword)

	a, _ := newTestApp(t, testConfig(b.URL(), storePath(t)), "")
	a.Start(context.Background())
	before := b.requestCount()

	err := a.Login(context.Background(), "not-an-email")
	var verr *models.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, before, b.requestCount())
}

func TestApp_Signup(t *testing.T) {
	b := newTaskBackend(t)
	stubPassword(t, testPassword)
	ctx := context.Background()

	a, out := newTestApp(t, testConfig(b.URL(), storePath(t)), "bob@example.com\nBob\n")
	a.Start(ctx)

	require.NoError(t, a.Signup(ctx, "", ""))
	assert.Contains(t, out.String(), "Account created, signed in as Bob")
	assert.Equal(t, "Bob", a.session.CurrentUser().Name)

	err := a.Signup(ctx, testEmail, "")
	require.Error(t, err)
	assert.Equal(t, "Email already registered", ErrorText(err))
}

func TestApp_ProtectedCommandWithoutSession(t *testing.T) {
	b := newTaskBackend(t)
	a, _ := newTestApp(t, testConfig(b.URL(), storePath(t)), "")
	a.Start(context.Background())

	err := a.ListTasks(context.Background(), "")
	require.ErrorIs(t, err, ErrNotSignedIn)
	assert.Equal(t, common.LoginPath, a.nav.Current())
	assert.Equal(t, 0, b.requestCount())
}

func TestApp_TaskLifecycle(t *testing.T) {
	b := newTaskBackend(t)
	stubPassword(t, testPassword)
	ctx := context.Background()

	a, out := newTestApp(t, testConfig(b.URL(), storePath(t)), "")
	a.Start(ctx)
	require.NoError(t, a.Login(ctx, testEmail))

	require.NoError(t, a.AddTask(ctx, "Buy milk", "2 liters"))
	tasks := b.snapshot()
	require.Len(t, tasks, 1)
	id := tasks[0].ID
	short := services.ShortID(id)

	out.Reset()
	require.NoError(t, a.ListTasks(ctx, FilterActive))
	assert.Contains(t, out.String(), short)
	assert.Contains(t, out.String(), "Buy milk")

	require.NoError(t, a.ToggleTask(ctx, short))
	assert.True(t, b.snapshot()[0].Completed)

	out.Reset()
	require.NoError(t, a.ListTasks(ctx, FilterActive))
	assert.Contains(t, out.String(), "No tasks yet")

	out.Reset()
	require.NoError(t, a.ShowTask(ctx, id))
	assert.Contains(t, out.String(), "2 liters")
	assert.Contains(t, out.String(), "[x]")

	title := "Buy oat milk"
	require.NoError(t, a.EditTask(ctx, short, models.TaskUpdate{Title: &title}))
	assert.Equal(t, title, b.snapshot()[0].Title)

	require.NoError(t, a.DeleteTask(ctx, id, true))
	assert.Empty(t, b.snapshot())
}

func TestApp_AddTaskPrompts(t *testing.T) {
	b := newTaskBackend(t)
	stubPassword(t, testPassword)
	ctx := context.Background()

	a, _ := newTestApp(t, testConfig(b.URL(), storePath(t)), "Water plants\nthe ficus\nand the fern\n\n")
	a.Start(ctx)
	require.NoError(t, a.Login(ctx, testEmail))

	require.NoError(t, a.AddTask(ctx, "", ""))
	tasks := b.snapshot()
	require.Len(t, tasks, 1)
	assert.Equal(t, "Water plants", tasks[0].Title)
	assert.Equal(t, "the ficus\nand the fern", tasks[0].Details())
}

func TestApp_AddTaskValidation(t *testing.T) {
	b := newTaskBackend(t)
	stubPassword(t, testPassword)
	ctx := context.Background()

	a, _ := newTestApp(t, testConfig(b.URL(), storePath(t)), "")
	a.Start(ctx)
	require.NoError(t, a.Login(ctx, testEmail))

	long := make([]byte, models.MaxTitleLength+1)
	for i := range long {
		long[i] = 'a'
	}
	err := a.AddTask(ctx, string(long), "")
	var verr *models.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Empty(t, b.snapshot())
}

func TestApp_EditPromptsKeepBlankFields(t *testing.T) {
	b := newTaskBackend(t)
	stubPassword(t, testPassword)
	ctx := context.Background()
	task := b.seed("Read book", false)

	a, _ := newTestApp(t, testConfig(b.URL(), storePath(t)), "\nchapter 3\n\n")
	a.Start(ctx)
	require.NoError(t, a.Login(ctx, testEmail))

	require.NoError(t, a.EditTask(ctx, task.ID, models.TaskUpdate{}))
	got := b.snapshot()[0]
	assert.Equal(t, "Read book", got.Title)
	assert.Equal(t, "chapter 3", got.Details())
}

func TestApp_EditNothingChanged(t *testing.T) {
	b := newTaskBackend(t)
	stubPassword(t, testPassword)
	ctx := context.Background()
	task := b.seed("Read book", false)

	a, _ := newTestApp(t, testConfig(b.URL(), storePath(t)), "\n\n")
	a.Start(ctx)
	require.NoError(t, a.Login(ctx, testEmail))

	err := a.EditTask(ctx, task.ID, models.TaskUpdate{})
	require.ErrorIs(t, err, services.ErrNothingToEdit)
}

func TestApp_DeleteAsksForConfirmation(t *testing.T) {
	b := newTaskBackend(t)
	stubPassword(t, testPassword)
	ctx := context.Background()
	task := b.seed("Keep me", false)

	orig := confirm
	t.Cleanup(func() { confirm = orig })
	var asked string
	confirm = func(_ *bufio.Reader, prompt string, _ io.Writer) (bool, error) {
		asked = prompt
		return false, nil
	}

	a, out := newTestApp(t, testConfig(b.URL(), storePath(t)), "")
	a.Start(ctx)
	require.NoError(t, a.Login(ctx, testEmail))

	require.NoError(t, a.DeleteTask(ctx, task.ID, false))
	assert.Equal(t, "Delete task "+services.ShortID(task.ID)+"?", asked)
	assert.Contains(t, out.String(), "Cancelled")
	assert.Len(t, b.snapshot(), 1)
}

func TestApp_UnknownTask(t *testing.T) {
	b := newTaskBackend(t)
	stubPassword(t, testPassword)
	ctx := context.Background()

	a, _ := newTestApp(t, testConfig(b.URL(), storePath(t)), "")
	a.Start(ctx)
	require.NoError(t, a.Login(ctx, testEmail))

	err := a.ShowTask(ctx, "6f1c2d3e-0000-4000-8000-000000000000")
	require.ErrorIs(t, err, client.ErrNotFound)
	assert.Equal(t, "Task not found (status 404)", ErrorText(err))

	err = a.ShowTask(ctx, "zz")
	require.ErrorIs(t, err, services.ErrInvalidID)
}

func TestApp_ServerRejectsToken(t *testing.T) {
	b := newTaskBackend(t)
	stubPassword(t, testPassword)
	ctx := context.Background()

	a, _ := newTestApp(t, testConfig(b.URL(), storePath(t)), "")
	a.Start(ctx)
	require.NoError(t, a.Login(ctx, testEmail))

	b.revoke()
	err := a.ListTasks(ctx, "")
	require.ErrorIs(t, err, client.ErrUnauthorized)
	assert.Equal(t, "Session expired, please sign in again", ErrorText(err))
	assert.False(t, a.isLoggedIn())
	assert.Empty(t, a.store.Get(ctx))
	assert.Equal(t, common.LoginPath, a.nav.Current())

	require.ErrorIs(t, a.ListTasks(ctx, ""), ErrNotSignedIn)
}

func TestApp_GuardModes(t *testing.T) {
	expired := mint(t, jwt.MapClaims{"sub": "u-1", "exp": time.Now().Add(-time.Hour).Unix()})

	tests := []struct {
		name    string
		mode    guard.Mode
		wantErr error
		wantHit bool
	}{
		{name: "presence check reaches the server", mode: guard.PresenceCheck, wantErr: client.ErrUnauthorized, wantHit: true},
		{name: "expiry check stops locally", mode: guard.ExpiryCheck, wantErr: ErrNotSignedIn, wantHit: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := newTaskBackend(t)
			ctx := context.Background()
			a, _ := newTestApp(t, testConfig(b.URL(), storePath(t)), "", WithGuardMode(tc.mode))
			require.NoError(t, a.store.Set(ctx, expired))
			a.Start(ctx)

			err := a.ListTasks(ctx, "")
			require.ErrorIs(t, err, tc.wantErr)
			assert.Equal(t, tc.wantHit, b.requestCount() > 0)
			assert.Empty(t, a.store.Get(ctx))
		})
	}
}

func TestApp_UnknownFilter(t *testing.T) {
	b := newTaskBackend(t)
	stubPassword(t, testPassword)
	ctx := context.Background()

	a, _ := newTestApp(t, testConfig(b.URL(), storePath(t)), "")
	a.Start(ctx)
	require.NoError(t, a.Login(ctx, testEmail))
	before := b.requestCount()

	require.Error(t, a.ListTasks(ctx, "someday"))
	assert.Equal(t, before, b.requestCount())
}

func TestApp_Whoami(t *testing.T) {
	b := newTaskBackend(t)
	stubPassword(t, testPassword)
	ctx := context.Background()

	a, out := newTestApp(t, testConfig(b.URL(), storePath(t)), "")
	a.Start(ctx)
	require.NoError(t, a.Login(ctx, testEmail))

	out.Reset()
	require.NoError(t, a.Whoami(ctx, false))
	assert.Contains(t, out.String(), "u-1")
	assert.Contains(t, out.String(), "valid until")
	assert.NotContains(t, out.String(), "Alice")

	out.Reset()
	require.NoError(t, a.Whoami(ctx, true))
	assert.Contains(t, out.String(), "Alice")
	assert.Contains(t, out.String(), "Member since")
}

func TestApp_Dashboard(t *testing.T) {
	b := newTaskBackend(t)
	stubPassword(t, testPassword)
	ctx := context.Background()
	b.seed("one", true)
	b.seed("two", false)
	b.seed("three", false)

	a, out := newTestApp(t, testConfig(b.URL(), storePath(t)), "")
	a.Start(ctx)
	require.NoError(t, a.Login(ctx, testEmail))

	out.Reset()
	require.NoError(t, a.Dashboard(ctx))
	assert.Contains(t, out.String(), "Welcome, "+testEmail+"!")
	assert.Contains(t, out.String(), "3 tasks, 1 done, 2 open")
}

func TestApp_LogoutIsIdempotent(t *testing.T) {
	b := newTaskBackend(t)
	stubPassword(t, testPassword)
	ctx := context.Background()

	a, out := newTestApp(t, testConfig(b.URL(), storePath(t)), "")
	a.Start(ctx)
	require.NoError(t, a.Login(ctx, testEmail))

	require.NoError(t, a.Logout(ctx))
	require.NoError(t, a.Logout(ctx))

	assert.Equal(t, 1, b.logouts)
	assert.Contains(t, out.String(), "Not signed in")
	assert.False(t, a.isLoggedIn())
	assert.Empty(t, a.store.Get(ctx))
	assert.Equal(t, common.LoginPath, a.nav.Current())
}

func TestApp_StorageDisabledKeepsSessionInMemory(t *testing.T) {
	b := newTaskBackend(t)
	stubPassword(t, testPassword)
	ctx := context.Background()

	a, _ := newTestApp(t, testConfig(b.URL(), ""), "")
	a.Start(ctx)
	require.NoError(t, a.Login(ctx, testEmail))
	require.NoError(t, a.ListTasks(ctx, ""))
}

func TestApp_Status(t *testing.T) {
	b := newTaskBackend(t)
	stubPassword(t, testPassword)
	ctx := context.Background()

	a, _ := newTestApp(t, testConfig(b.URL(), storePath(t)), "")
	a.Start(ctx)
	assert.Equal(t, "", a.status())

	require.NoError(t, a.Login(ctx, testEmail))
	assert.Equal(t, "("+testEmail+" "+common.TodosPath+")", a.status())
}
