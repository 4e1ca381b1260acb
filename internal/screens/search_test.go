package screens

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galo61408022-ux/Aidoctalk/internal/domain"
	"github.com/galo61408022-ux/Aidoctalk/internal/toast"
)

type fakeDirectory struct {
	hospitals []domain.Hospital
	searchErr error
	detail    *domain.Hospital
	detailErr error
}

func (f *fakeDirectory) Search(ctx context.Context, query string) ([]domain.Hospital, error) {
	return f.hospitals, f.searchErr
}

func (f *fakeDirectory) Details(ctx context.Context, id string) (*domain.Hospital, error) {
	return f.detail, f.detailErr
}

func newSearch(dir DirectorySearcher) *Search {
	return NewSearch(dir, toast.NewNotifier(), zerolog.Nop())
}

func TestSearchStartsOnBuiltinDirectory(t *testing.T) {
	s := newSearch(&fakeDirectory{})
	assert.Len(t, s.Results(), 6)
}

func TestSearchLoadKeepsBuiltinOnFailure(t *testing.T) {
	s := newSearch(&fakeDirectory{searchErr: &domain.APIError{Status: 502}})
	s.Load(context.Background())
	assert.Len(t, s.Results(), 6)
}

func TestSearchLoadReplacesDirectory(t *testing.T) {
	s := newSearch(&fakeDirectory{hospitals: []domain.Hospital{{ID: "x", Name: "Remote Hospital"}}})
	s.Load(context.Background())
	results := s.Results()
	require.Len(t, results, 1)
	assert.Equal(t, "Remote Hospital", results[0].Name)
}

func TestSearchQueryMatchesNameOrAddress(t *testing.T) {
	s := newSearch(&fakeDirectory{})

	s.SetQuery("dental")
	results := s.Results()
	require.Len(t, results, 1)
	assert.Equal(t, "Dental Excellence", results[0].Name)

	// Address matches count too.
	s.SetQuery("marina street")
	results = s.Results()
	require.Len(t, results, 1)
	assert.Equal(t, "Lagos Medical Center", results[0].Name)
}

func TestSearchFiltersCombineConjunctively(t *testing.T) {
	s := newSearch(&fakeDirectory{})

	s.SetSpecialty("Cardiology")
	results := s.Results()
	require.Len(t, results, 1)
	assert.Equal(t, "Heart & Cardiovascular Center", results[0].Name)

	// A location that contradicts the specialty yields nothing.
	s.SetLocation("Yaba")
	assert.Empty(t, s.Results())

	s.SetLocation("Ikoyi")
	require.Len(t, s.Results(), 1)

	// Adding a query narrows further; every result satisfies all filters.
	s.SetQuery("heart")
	results = s.Results()
	require.Len(t, results, 1)
	for _, h := range results {
		assert.Equal(t, "Cardiology", h.Specialty)
		assert.Equal(t, "Ikoyi", h.Location)
	}

	s.SetQuery("dental")
	assert.Empty(t, s.Results())
}

func TestSearchClearingFiltersRestoresAll(t *testing.T) {
	s := newSearch(&fakeDirectory{})
	s.SetQuery("eye")
	s.SetSpecialty("Eye Clinic")
	s.SetLocation("Victoria Island")
	require.Len(t, s.Results(), 1)

	s.SetQuery("")
	s.SetSpecialty("")
	s.SetLocation("")
	assert.Len(t, s.Results(), 6)
}

func TestSearchDetailsFallsBackToLocalEntry(t *testing.T) {
	s := newSearch(&fakeDirectory{detailErr: &domain.APIError{Status: 500}})
	h, err := s.Details(context.Background(), "dir-2")
	require.NoError(t, err)
	assert.Equal(t, "Eye Care Specialists", h.Name)

	_, err = s.Details(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
