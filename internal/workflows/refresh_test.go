package workflows

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"

	"github.com/wasteatlas/wasteatlas/internal/core/domain"
	"github.com/wasteatlas/wasteatlas/internal/core/usecases"
)

type fakeSource struct {
	err error
}

func (s *fakeSource) Load(ctx context.Context, spec domain.DatasetSpec) ([]domain.Feature, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []domain.Feature{{
		ID:      "BEL",
		Country: "Belgium",
		Keys:    []string{"Country", "MSW_2000", "MSW_2005"},
		Values: map[string]domain.Value{
			"MSW_2000": domain.Num(400),
			"MSW_2005": domain.Num(410),
		},
	}}, nil
}

type fakeRepo struct {
	mu     sync.Mutex
	stored []string
	err    error
}

func (r *fakeRepo) Upsert(ctx context.Context, ds *domain.Dataset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.stored = append(r.stored, ds.Name)
	return nil
}
func (r *fakeRepo) GetByName(ctx context.Context, name string) (*domain.Dataset, error) {
	return nil, domain.ErrDatasetNotFound
}
func (r *fakeRepo) List(ctx context.Context) ([]domain.DatasetSummary, error) { return nil, nil }
func (r *fakeRepo) Delete(ctx context.Context, name string) error            { return nil }

type fakePublisher struct {
	mu       sync.Mutex
	reloaded [][]string
}

func (p *fakePublisher) PublishSequenceChanged(ctx context.Context, ev *domain.SequenceEvent) error {
	return nil
}
func (p *fakePublisher) PublishDatasetsReload(ctx context.Context, names []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reloaded = append(p.reloaded, names)
	return nil
}

var input = RefreshInput{
	Generated: domain.DatasetSpec{Name: "generated", Kind: domain.KindGenerated, Source: "gen.geojson", Marker: "MSW"},
	Recovered: domain.DatasetSpec{Name: "recovered", Kind: domain.KindRecovered, Source: "rec.geojson", Marker: "MSW"},
}

func TestDatasetRefreshWorkflow(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()

	repo := &fakeRepo{}
	pub := &fakePublisher{}
	env.RegisterActivity(&RefreshActivities{
		Loader:    usecases.NewLoader(&fakeSource{}),
		Repo:      repo,
		Publisher: pub,
	})

	env.ExecuteWorkflow(DatasetRefreshWorkflow, input)
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var result RefreshResult
	require.NoError(t, env.GetWorkflowResult(&result))
	require.Len(t, result.Datasets, 2)
	assert.Equal(t, "generated", result.Datasets[0].Name)
	assert.Equal(t, []string{"MSW_2000", "MSW_2005"}, result.Datasets[1].Attributes)

	assert.Equal(t, []string{"generated", "recovered"}, repo.stored)
	assert.Equal(t, [][]string{{"generated", "recovered"}}, pub.reloaded)
}

func TestDatasetRefreshWorkflow_LoadFailureStoresNothing(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()

	repo := &fakeRepo{}
	pub := &fakePublisher{}
	env.RegisterActivity(&RefreshActivities{
		Loader:    usecases.NewLoader(&fakeSource{err: errors.New("404 Not Found")}),
		Repo:      repo,
		Publisher: pub,
	})

	env.ExecuteWorkflow(DatasetRefreshWorkflow, input)
	require.True(t, env.IsWorkflowCompleted())
	err := env.GetWorkflowError()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load dataset generated")

	assert.Empty(t, repo.stored)
	assert.Empty(t, pub.reloaded)
}

func TestLoadDataset_NoFeaturesIsNotRetryable(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestActivityEnvironment()
	env.RegisterActivity(&RefreshActivities{Loader: usecases.NewLoader(&emptySource{})})

	_, err := env.ExecuteActivity(ActivityLoadDataset, input.Generated)
	require.Error(t, err)

	var appErr *temporal.ApplicationError
	require.True(t, errors.As(err, &appErr))
	assert.True(t, appErr.NonRetryable())
	assert.Equal(t, "InvalidDataset", appErr.Type())
}

type emptySource struct{}

func (emptySource) Load(ctx context.Context, spec domain.DatasetSpec) ([]domain.Feature, error) {
	return nil, nil
}
