package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"hybrid-energy-platform/internal/models"
	"hybrid-energy-platform/internal/repository"
	"hybrid-energy-platform/pkg/logging"
)

// FacilityService manages stored facility surveys and turns them into analysis requests
type FacilityService struct {
	repo   repository.FacilityRepository
	logger *logging.StructuredLogger
}

// ImportResult summarizes a directory import
type ImportResult struct {
	TotalFiles int
	Imported   int
	Failed     int
	Equipment  int
	Duration   time.Duration
	Errors     []string
}

func NewFacilityService(repo repository.FacilityRepository, logger *logging.StructuredLogger) *FacilityService {
	return &FacilityService{
		repo:   repo,
		logger: logger,
	}
}

// Save validates a survey and stores it atomically, replacing any previous inventory and
// weather. A survey without weather clears the stored profile.
func (s *FacilityService) Save(ctx context.Context, survey *models.FacilitySurvey) error {
	if err := survey.Validate(); err != nil {
		return err
	}

	facility := &models.Facility{
		ID:           survey.FacilityID,
		Name:         survey.Name,
		FacilityType: survey.FacilityType,
	}
	return s.repo.SaveSurvey(ctx, facility, survey.Equipment, survey.Weather)
}

// Inventory returns a facility's stored equipment
func (s *FacilityService) Inventory(ctx context.Context, facilityID string) ([]models.Equipment, error) {
	if _, err := s.repo.GetFacility(ctx, facilityID); err != nil {
		return nil, err
	}
	return s.repo.ListEquipment(ctx, facilityID)
}

// BuildRequest fills req with the facility's stored inventory, weather and type. A facility
// without a stored weather profile is analysed against synthetic weather.
func (s *FacilityService) BuildRequest(ctx context.Context, facilityID string, req *models.AnalysisRequest) error {
	facility, err := s.repo.GetFacility(ctx, facilityID)
	if err != nil {
		return err
	}

	equipment, err := s.repo.ListEquipment(ctx, facilityID)
	if err != nil {
		return err
	}

	weather, err := s.repo.GetWeatherProfile(ctx, facilityID)
	switch {
	case repository.IsNotFound(err):
		s.logger.Debug(ctx, "[FACILITY_WEATHER] No stored weather profile, using synthetic weather", logging.Fields{
			"facility_id": facilityID,
		})
		weather = nil
	case err != nil:
		return err
	}

	req.FacilityID = facility.ID
	req.Equipment = equipment
	req.Weather = weather
	if req.Options.FacilityType == "" {
		req.Options.FacilityType = facility.FacilityType
	}
	return nil
}

// ImportDirectory stores every *.yaml survey in dir. A bad file is recorded and skipped.
func (s *FacilityService) ImportDirectory(ctx context.Context, dir string) (*ImportResult, error) {
	start := time.Now()

	files, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no survey files found in %s", dir)
	}

	log := s.logger.WithFields(logging.Fields{"dir": dir})
	log.Info(ctx, "[IMPORT_START] Importing facility surveys", logging.Fields{
		"file_count": len(files),
	})

	result := &ImportResult{TotalFiles: len(files), Errors: []string{}}
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		survey, err := ReadSurvey(path)
		if err == nil {
			err = s.Save(ctx, survey)
		}
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", filepath.Base(path), err))
			log.Error(ctx, "[IMPORT_FILE_ERROR] Survey import failed", logging.Fields{
				"file": filepath.Base(path),
			}, err)
			continue
		}

		result.Imported++
		result.Equipment += len(survey.Equipment)
	}

	result.Duration = time.Since(start)
	log.Info(ctx, "[IMPORT_COMPLETE] Facility import completed", logging.Fields{
		"imported":         result.Imported,
		"failed":           result.Failed,
		"equipment":        result.Equipment,
		"duration_seconds": result.Duration.Seconds(),
	})
	return result, nil
}

// ReadSurvey decodes one YAML survey; the facility ID defaults to the file name
func ReadSurvey(path string) (*models.FacilitySurvey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read survey: %w", err)
	}

	var survey models.FacilitySurvey
	if err := yaml.Unmarshal(data, &survey); err != nil {
		return nil, fmt.Errorf("failed to parse survey: %w", err)
	}
	if survey.FacilityID == "" {
		name := filepath.Base(path)
		survey.FacilityID = strings.TrimSuffix(name, filepath.Ext(name))
	}
	return &survey, nil
}
