package projectmodal

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docworkspace/pkg/docapi"
	"docworkspace/pkg/events"
	"docworkspace/pkg/session"
	"docworkspace/pkg/store"
)

type fakeCreator struct {
	got docapi.ProjectRequest
	err error
}

func (f *fakeCreator) CreateProject(_ context.Context, _ string, req docapi.ProjectRequest) (docapi.Project, error) {
	f.got = req
	if f.err != nil {
		return docapi.Project{}, f.err
	}
	return docapi.Project{ID: "p1", Name: req.Name}, nil
}

func signedIn() session.Provider {
	return session.StaticProvider{Session: &session.Session{AccessToken: "tok"}}
}

func TestDraftEditing(t *testing.T) {
	st := store.New()
	svc := NewProjectModalService(store.NewRegistry(st, nil), &fakeCreator{}, signedIn(), nil, nil)

	svc.Open([]string{"d1"})
	svc.SetName("Q3 review")
	svc.ToggleElement("e1")
	svc.ToggleElement("e2")
	svc.ToggleElement("e1")

	assert.True(t, SelectModalOpen(st.State()))
	assert.Equal(t, Draft{Name: "Q3 review", DocumentIDs: []string{"d1"}, ElementIDs: []string{"e2"}}, SelectProjectDraft(st.State()))

	svc.Close()
	assert.False(t, SelectModalOpen(st.State()))
	assert.Equal(t, Draft{}, SelectProjectDraft(st.State()))
}

func TestSubmitValidation(t *testing.T) {
	svc := NewProjectModalService(store.NewRegistry(store.New(), nil), &fakeCreator{}, signedIn(), nil, nil)
	ctx := context.Background()

	_, err := svc.Submit(ctx)
	assert.ErrorIs(t, err, ErrModalClosed)

	svc.Open(nil)
	_, err = svc.Submit(ctx)
	assert.ErrorIs(t, err, ErrEmptyName)

	svc.SetName("  ")
	_, err = svc.Submit(ctx)
	assert.ErrorIs(t, err, ErrEmptyName)

	svc.SetName("Report")
	_, err = svc.Submit(ctx)
	assert.ErrorIs(t, err, ErrNothingSelected)
}

func TestSubmitCreatesProjectAndCloses(t *testing.T) {
	st := store.New()
	api := &fakeCreator{}
	rec := &events.Recorder{}
	svc := NewProjectModalService(store.NewRegistry(st, nil), api, signedIn(), rec, nil)

	svc.Open([]string{"d1", "d2"})
	svc.SetName(" Report ")
	svc.ToggleElement("e1")

	p, err := svc.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, "Report", api.got.Name)
	assert.Equal(t, []string{"d1", "d2"}, api.got.DocumentIDs)

	s := st.State()
	assert.False(t, SelectModalOpen(s))
	require.NotNil(t, SelectLastProject(s))
	assert.Equal(t, "p1", SelectLastProject(s).ID)
	assert.Equal(t, []string{events.ProjectCreated}, rec.Types())
}

func TestSubmitFailureKeepsDraft(t *testing.T) {
	st := store.New()
	svc := NewProjectModalService(store.NewRegistry(st, nil), &fakeCreator{err: errors.New("quota exceeded")}, signedIn(), nil, nil)

	svc.Open(nil)
	svc.SetName("Report")
	svc.ToggleElement("e1")
	_, err := svc.Submit(context.Background())
	require.Error(t, err)

	s := st.State()
	assert.True(t, SelectModalOpen(s))
	assert.False(t, SelectProjectSubmitting(s))
	require.NotNil(t, SelectProjectError(s))
	assert.Equal(t, "quota exceeded", *SelectProjectError(s))
	assert.Equal(t, "Report", SelectProjectDraft(s).Name)
}

func TestSubmitRequiresSession(t *testing.T) {
	svc := NewProjectModalService(store.NewRegistry(store.New(), nil), &fakeCreator{}, session.StaticProvider{}, nil, nil)
	svc.Open(nil)
	svc.SetName("Report")
	svc.ToggleElement("e1")

	_, err := svc.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNotSignedIn)
}
