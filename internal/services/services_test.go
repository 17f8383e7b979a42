package services

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hybrid-energy-platform/internal/models"
	"hybrid-energy-platform/internal/repository"
	"hybrid-energy-platform/pkg/logging"
	"hybrid-energy-platform/pkg/metrics"
)

// memoryRepository is an in-memory FacilityRepository
type memoryRepository struct {
	mu         sync.Mutex
	facilities map[string]models.Facility
	equipment  map[string][]models.Equipment
	weather    map[string]*models.WeatherSeries
	failWith   error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		facilities: map[string]models.Facility{},
		equipment:  map[string][]models.Equipment{},
		weather:    map[string]*models.WeatherSeries{},
	}
}

func (m *memoryRepository) SaveSurvey(_ context.Context, f *models.Facility, items []models.Equipment, w *models.WeatherSeries) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.facilities[f.ID] = *f
	m.equipment[f.ID] = append([]models.Equipment{}, items...)
	if w == nil {
		delete(m.weather, f.ID)
	} else {
		m.weather[f.ID] = w
	}
	return nil
}

func (m *memoryRepository) GetFacility(_ context.Context, id string) (*models.Facility, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.facilities[id]
	if !ok {
		return nil, &repository.NotFoundError{Resource: "facility", ID: id}
	}
	return &f, nil
}

func (m *memoryRepository) ListEquipment(_ context.Context, id string) ([]models.Equipment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Equipment{}, m.equipment[id]...), nil
}

func (m *memoryRepository) GetWeatherProfile(_ context.Context, id string) (*models.WeatherSeries, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.weather[id]
	if !ok {
		return nil, &repository.NotFoundError{Resource: "weather_profile", ID: id}
	}
	return w, nil
}

func (m *memoryRepository) HealthCheck(context.Context) error {
	return nil
}

func quietLogger() *logging.StructuredLogger {
	logger := logging.NewStructuredLogger("energy-test", "test", logging.DebugLevel)
	logger.SetOutput(io.Discard)
	return logger
}

func newTestServices(repo repository.FacilityRepository) (*AnalysisService, *FacilityService, *metrics.Collector) {
	logger := quietLogger()
	collector := metrics.NewCollector("energy_test", prometheus.NewRegistry())
	facilities := NewFacilityService(repo, logger)
	return NewAnalysisService(nil, time.Minute, facilities, logger, collector), facilities, collector
}

func clinicSurvey() *models.FacilitySurvey {
	return &models.FacilitySurvey{
		FacilityID:   "clinic-1",
		Name:         "Rural clinic",
		FacilityType: models.FacilityHealthClinic,
		Equipment: []models.Equipment{
			{ID: "m1", Name: "Vaccine fridge", Category: models.CategoryMedical, PowerRatingW: 300, HoursPerDay: 24, Efficiency: 0.9, Priority: models.PriorityEssential, Quantity: 2},
			{ID: "l1", Name: "Ward lighting", Category: models.CategoryLighting, PowerRatingW: 18, HoursPerDay: 12, Efficiency: 0.9, Priority: models.PriorityImportant, Quantity: 20},
		},
	}
}

func TestAnalysisService_Analyze(t *testing.T) {
	svc, _, _ := newTestServices(newMemoryRepository())

	req := svc.NewRequest()
	req.Equipment = clinicSurvey().Equipment

	report, err := svc.Analyze(context.Background(), req)
	require.NoError(t, err)

	_, err = uuid.Parse(report.AnalysisID)
	assert.NoError(t, err)
	assert.False(t, report.GeneratedAt.IsZero())
	assert.Equal(t, models.WeatherSynthetic, report.WeatherSource)
	require.NotNil(t, report.Financial)

	second, err := svc.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.NotEqual(t, report.AnalysisID, second.AnalysisID)
}

func TestAnalysisService_InvalidInput(t *testing.T) {
	svc, _, _ := newTestServices(newMemoryRepository())

	req := svc.NewRequest()
	req.Equipment = clinicSurvey().Equipment
	req.Equipment[1].Efficiency = 2

	_, err := svc.Analyze(context.Background(), req)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	assert.Equal(t, "invalid_input", resultLabel(err))
}

func TestAnalysisService_LoadProfile(t *testing.T) {
	svc, _, _ := newTestServices(newMemoryRepository())

	req := svc.NewRequest()
	req.Equipment = clinicSurvey().Equipment

	result, err := svc.LoadProfile(context.Background(), req)
	require.NoError(t, err)

	assert.Len(t, result.LoadProfile, models.HoursPerDay)
	assert.Greater(t, result.Summary.PeakDemandKW, 0.0)
	assert.InDelta(t, 0.6, result.CategoryBreakdown[models.CategoryMedical], 1e-12)
}

func TestAnalysisService_UncertaintyRequiresSection(t *testing.T) {
	svc, _, _ := newTestServices(newMemoryRepository())

	req := svc.NewRequest()
	req.Equipment = clinicSurvey().Equipment

	_, err := svc.Uncertainty(context.Background(), req)
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	req.Uncertainty = &models.UncertaintyRequest{
		Sensitivity: map[models.Parameter][]float64{models.ParamDiscountRate: {0.05, 0.10}},
	}
	result, err := svc.Uncertainty(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, result.Sensitivity, 2)
	assert.Nil(t, result.MonteCarlo)
}

func TestAnalysisService_AnalyzeFacility(t *testing.T) {
	repo := newMemoryRepository()
	svc, facilities, _ := newTestServices(repo)
	require.NoError(t, facilities.Save(context.Background(), clinicSurvey()))

	report, err := svc.AnalyzeFacility(context.Background(), "clinic-1", svc.NewRequest())
	require.NoError(t, err)
	assert.Equal(t, "clinic-1", report.FacilityID)
	assert.Equal(t, models.WeatherSynthetic, report.WeatherSource)
	// stored facility type drives the facility advice
	assert.Contains(t, report.Recommendations, "Install solar water heating for sterilization and hot water to offload electric heaters.")

	_, err = svc.AnalyzeFacility(context.Background(), "missing", svc.NewRequest())
	assert.True(t, repository.IsNotFound(err))

	detached := NewAnalysisService(nil, 0, nil, quietLogger(), metrics.NewCollector("energy_test", prometheus.NewRegistry()))
	_, err = detached.AnalyzeFacility(context.Background(), "clinic-1", detached.NewRequest())
	assert.ErrorIs(t, err, ErrFacilityStoreUnavailable)
}

func TestFacilityService_BuildRequestUsesStoredWeather(t *testing.T) {
	repo := newMemoryRepository()
	_, facilities, _ := newTestServices(repo)

	survey := clinicSurvey()
	survey.Weather = &models.WeatherSeries{
		TemperatureC:  make([]float64, models.HoursPerDay),
		IrradianceWm2: make([]float64, models.HoursPerDay),
	}
	require.NoError(t, facilities.Save(context.Background(), survey))

	req := models.NewAnalysisRequest()
	req.Options.FacilityType = models.FacilityOffice
	require.NoError(t, facilities.BuildRequest(context.Background(), "clinic-1", req))

	assert.Equal(t, survey.Equipment, req.Equipment)
	assert.NotNil(t, req.Weather)
	// an explicit facility type on the request wins over the stored one
	assert.Equal(t, models.FacilityOffice, req.Options.FacilityType)

	equipment, err := facilities.Inventory(context.Background(), "clinic-1")
	require.NoError(t, err)
	assert.Len(t, equipment, 2)
}

func TestFacilityService_ResaveWithoutWeatherClearsProfile(t *testing.T) {
	repo := newMemoryRepository()
	_, facilities, _ := newTestServices(repo)

	hot := make([]float64, models.HoursPerDay)
	for h := range hot {
		hot[h] = 40
	}
	survey := clinicSurvey()
	survey.Weather = &models.WeatherSeries{
		TemperatureC:  hot,
		IrradianceWm2: make([]float64, models.HoursPerDay),
	}
	require.NoError(t, facilities.Save(context.Background(), survey))

	resurvey := clinicSurvey()
	resurvey.Equipment = resurvey.Equipment[:1]
	require.NoError(t, facilities.Save(context.Background(), resurvey))

	req := models.NewAnalysisRequest()
	require.NoError(t, facilities.BuildRequest(context.Background(), "clinic-1", req))
	assert.Nil(t, req.Weather, "stale weather survived a re-save without weather")
	assert.Len(t, req.Equipment, 1)

	_, err := repo.GetWeatherProfile(context.Background(), "clinic-1")
	assert.True(t, repository.IsNotFound(err))
}

func TestFacilityService_SaveRejectsInvalidSurvey(t *testing.T) {
	repo := newMemoryRepository()
	_, facilities, _ := newTestServices(repo)

	survey := clinicSurvey()
	survey.Equipment[0].Quantity = 0

	err := facilities.Save(context.Background(), survey)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	assert.Empty(t, repo.facilities)

	repo.failWith = errors.New("connection reset")
	err = facilities.Save(context.Background(), clinicSurvey())
	assert.EqualError(t, err, "connection reset")
}

func TestFacilityService_ImportDirectory(t *testing.T) {
	dir := t.TempDir()
	good := `
name: District school
facility_type: school
equipment:
  - id: pc
    name: Lab computer
    category: computing
    power_rating_w: 120
    hours_per_day: 8
    efficiency: 0.9
    priority: important
    quantity: 15
`
	bad := `
facility_id: broken
equipment:
  - name: Pump
    category: other
    power_rating_w: -10
    hours_per_day: 4
    efficiency: 0.8
    priority: optional
    quantity: 1
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "school-9.yaml"), []byte(good), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte(bad), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	repo := newMemoryRepository()
	_, facilities, _ := newTestServices(repo)

	result, err := facilities.ImportDirectory(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalFiles)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.Equipment)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "broken.yaml")

	// facility ID falls back to the file name
	f, err := repo.GetFacility(context.Background(), "school-9")
	require.NoError(t, err)
	assert.Equal(t, models.FacilitySchool, f.FacilityType)

	_, err = facilities.ImportDirectory(context.Background(), t.TempDir())
	assert.Error(t, err)
}
