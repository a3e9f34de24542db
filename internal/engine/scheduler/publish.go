package scheduler

import (
	"encoding/json"
	"os"
	"path/filepath"

	"go.trai.ch/spool/internal/core/domain"
	"go.trai.ch/zerr"
)

// Publish describes the successful artifacts of report in a manifest written
// to the output directory. With project.Versioned every artifact is also
// copied below its version segment. Nothing is written when the project
// disables both.
func (s *Scheduler) Publish(project *domain.Project, report *domain.BuildReport) (*domain.Manifest, error) {
	manifest := &domain.Manifest{
		Version: domain.ManifestVersion,
		Release: project.Release,
		Assets:  make(map[string]domain.ManifestAsset),
	}
	if !project.Manifest && !project.Versioned {
		return manifest, nil
	}

	for _, e := range report.Entries {
		if e.Status != domain.StatusSuccess || e.OutputPath == "" {
			continue
		}

		data, err := os.ReadFile(filepath.Join(project.OutputDir, filepath.FromSlash(e.OutputPath)))
		if err != nil {
			return nil, zerr.With(zerr.Wrap(domain.ErrOutputWriteFailed, err.Error()), "path", e.OutputPath)
		}
		integrity, err := domain.ComputeIntegrity(domain.DefaultIntegrityAlgorithm, data)
		if err != nil {
			return nil, err
		}

		versioned := domain.VersionedPath(e.OutputPath, project.Release, e.Fingerprint)
		manifest.Assets[e.OutputPath] = domain.ManifestAsset{
			Fingerprint:   e.Fingerprint,
			Integrity:     integrity,
			ContentType:   e.Kind.ContentType(),
			VersionedPath: versioned,
		}

		if project.Versioned {
			if _, err := s.writer.WriteArtifact(project.OutputDir, versioned, data); err != nil {
				return nil, err
			}
		}
	}

	if project.Manifest {
		data, err := json.MarshalIndent(manifest, "", "  ")
		if err != nil {
			return nil, zerr.Wrap(err, "failed to encode manifest")
		}
		if _, err := s.writer.WriteArtifact(project.OutputDir, domain.ManifestFileName, append(data, '\n')); err != nil {
			return nil, err
		}
	}
	return manifest, nil
}
