package services_test

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vytor/codedrill/internal/catalog"
	"github.com/vytor/codedrill/internal/errors"
	"github.com/vytor/codedrill/internal/events"
	"github.com/vytor/codedrill/internal/grading"
	"github.com/vytor/codedrill/internal/models"
	"github.com/vytor/codedrill/internal/services"
	"github.com/vytor/codedrill/internal/testutil/mocks"
)

var errDiskIO = stderrors.New("disk I/O error")

func twoSum() *models.Problem {
	return &models.Problem{
		ID:         1,
		Title:      "两数之和",
		Difficulty: models.DifficultyEasy,
		Category:   "数据结构",
		TestCases:  []models.TestCase{{Input: "[2,7] 9", ExpectedOutput: "[0,1]"}},
	}
}

type failingRepos struct {
	problems    *mocks.MockProblemRepository
	submissions *mocks.MockSubmissionRepository
	bookmarks   *mocks.MockBookmarkRepository
	drafts      *mocks.MockDraftRepository
	prefs       *mocks.MockPreferenceRepository
}

func newFailingRepos() failingRepos {
	return failingRepos{
		problems:    &mocks.MockProblemRepository{},
		submissions: &mocks.MockSubmissionRepository{},
		bookmarks:   &mocks.MockBookmarkRepository{},
		drafts:      &mocks.MockDraftRepository{},
		prefs:       &mocks.MockPreferenceRepository{},
	}
}

func TestProgress_ToggleBookmarkStoreFailure(t *testing.T) {
	ctx := context.Background()
	r := newFailingRepos()
	r.problems.On("Get", mock.Anything, int64(1)).Return(twoSum(), nil)
	r.bookmarks.On("Toggle", mock.Anything, int64(1), user, mock.Anything).Return(false, errDiskIO)

	bus := events.NewBus()
	toggled := 0
	defer bus.Subscribe(func(context.Context, events.Event) { toggled++ })()

	progress := services.NewProgressService(r.problems, r.submissions, r.bookmarks, bus)
	_, err := progress.ToggleBookmark(ctx, 1, user)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInternal, appCode(err))
	assert.Zero(t, toggled)
	r.bookmarks.AssertExpectations(t)
}

func TestProgress_AppendFailure(t *testing.T) {
	ctx := context.Background()
	r := newFailingRepos()
	r.problems.On("Get", mock.Anything, int64(1)).Return(twoSum(), nil)
	r.submissions.On("AppendEntry", mock.Anything, int64(1), user, mock.Anything).Return(nil, errDiskIO)

	progress := services.NewProgressService(r.problems, r.submissions, r.bookmarks, events.NewBus())

	_, err := progress.MarkCompleted(ctx, 1, user, "code", 30)
	assert.Equal(t, errors.ErrCodeInternal, appCode(err))

	_, err = progress.RecordFailure(ctx, 1, user, models.StatusWrongAnswer, "code", 30)
	assert.Equal(t, errors.ErrCodeInternal, appCode(err))

	r.submissions.AssertNumberOfCalls(t, "AppendEntry", 2)
}

func TestSubmit_AcceptedButRecordFails(t *testing.T) {
	ctx := context.Background()
	r := newFailingRepos()
	r.problems.On("Get", mock.Anything, int64(1)).Return(twoSum(), nil)
	r.submissions.On("AppendEntry", mock.Anything, int64(1), user, mock.Anything).Return(nil, errDiskIO)

	grader := &mocks.MockGrader{}
	grader.On("Grade", mock.Anything, mock.Anything, "final").
		Return(grading.Result{Passed: 1, Total: 1, Errors: []string{}}, nil)

	progress := services.NewProgressService(r.problems, r.submissions, r.bookmarks, events.NewBus())
	svc := services.NewSubmissionService(r.problems, r.drafts, progress, grader)

	out, err := svc.Submit(ctx, user, 1, "final", 60)
	require.Error(t, err)
	assert.Nil(t, out)
	assert.Equal(t, errors.ErrCodeInternal, appCode(err))
	// The draft survives when the accepted entry was never stored.
	r.drafts.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestBrowse_ListFailureIsNotCached(t *testing.T) {
	ctx := context.Background()
	r := newFailingRepos()
	r.problems.On("List", mock.Anything, models.ProblemFilter{}).Return([]models.Problem{*twoSum()}, nil)
	r.submissions.On("ListByUser", mock.Anything, user).Return(nil, errDiskIO).Once()
	r.submissions.On("ListByUser", mock.Anything, user).Return([]models.UserSubmissionRecord{}, nil)
	r.bookmarks.On("ListByUser", mock.Anything, user).Return([]models.Bookmark{}, nil)

	svc := services.NewCatalogService(r.problems, r.submissions, r.bookmarks, &mocks.MockBackendClient{}, events.NewBus(), nil)
	defer svc.Close()

	_, err := svc.Browse(ctx, user, catalog.DefaultFilterOptions(), catalog.NewPager(10))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInternal, appCode(err))

	page, err := svc.Browse(ctx, user, catalog.DefaultFilterOptions(), catalog.NewPager(10))
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)

	_, err = svc.Browse(ctx, user, catalog.DefaultFilterOptions(), catalog.NewPager(10))
	require.NoError(t, err)
	r.problems.AssertNumberOfCalls(t, "List", 2)
}

func TestDraft_StoreFailures(t *testing.T) {
	ctx := context.Background()
	r := newFailingRepos()
	r.problems.On("Get", mock.Anything, int64(1)).Return(twoSum(), nil)
	r.drafts.On("Save", mock.Anything, mock.Anything).Return(errDiskIO)
	r.drafts.On("ListByUser", mock.Anything, user).Return(nil, errDiskIO)

	svc := services.NewDraftService(r.problems, r.drafts)

	_, err := svc.SaveDraft(ctx, user, 1, "edited", 5)
	assert.Equal(t, errors.ErrCodeInternal, appCode(err))

	_, err = svc.ListDrafts(ctx, user)
	assert.Equal(t, errors.ErrCodeInternal, appCode(err))
}

func TestProfile_PreferenceStoreFailures(t *testing.T) {
	ctx := context.Background()
	r := newFailingRepos()
	r.prefs.On("Get", mock.Anything, user).Return(models.Preferences{}, errDiskIO)
	r.prefs.On("Save", mock.Anything, mock.Anything).Return(errDiskIO)

	svc := services.NewProfileService(r.problems, r.submissions, r.prefs)

	_, err := svc.Preferences(ctx, user)
	assert.Equal(t, errors.ErrCodeInternal, appCode(err))

	_, err = svc.SavePreferences(ctx, models.DefaultPreferences(user))
	assert.Equal(t, errors.ErrCodeInternal, appCode(err))
}
