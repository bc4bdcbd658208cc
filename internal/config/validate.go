package config

import (
	"errors"
	"fmt"
	"strings"

	"stitcher/internal/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateTranslation(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		return errors.New("paths.work_dir must be set")
	}
	if strings.TrimSpace(c.Paths.ArtifactDir) == "" {
		return errors.New("paths.artifact_dir must be set")
	}
	if strings.TrimSpace(c.Paths.APIBind) == "" {
		return errors.New("paths.api_bind must be set")
	}
	return nil
}

func (c *Config) validateTranscription() error {
	if c.Transcription.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/stitcher/config.toml"
		}
		return fmt.Errorf("transcription.api_key is required. Edit %s (create with 'stitcher config init')", defaultPath)
	}
	if strings.TrimSpace(c.Transcription.Model) == "" {
		return errors.New("transcription.model must be set")
	}
	if c.Transcription.SizeCeilingMiB <= 0 {
		return errors.New("transcription.size_ceiling_mib must be positive")
	}
	if c.Transcription.RequestTimeout <= 0 {
		return errors.New("transcription.request_timeout must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateTranslation() error {
	if len(c.Translation.Languages) == 0 {
		return errors.New("translation.languages must include at least one language")
	}
	seen := make(map[string]struct{}, len(c.Translation.Languages))
	for _, lang := range c.Translation.Languages {
		if strings.TrimSpace(lang.Name) == "" {
			return errors.New("translation.languages entries must set name")
		}
		code := strings.TrimSpace(lang.Code)
		if code == "" {
			return fmt.Errorf("translation.languages entry %q must set code", lang.Name)
		}
		canonical, err := language.Normalize(code)
		if err != nil {
			return fmt.Errorf("translation.languages entry %q has invalid code %q: %w", lang.Name, code, err)
		}
		if _, dup := seen[canonical]; dup {
			return fmt.Errorf("translation.languages code %q is duplicated", code)
		}
		seen[canonical] = struct{}{}
	}
	if c.Translation.RequestTimeout <= 0 {
		return errors.New("translation.request_timeout must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.Workers <= 0 {
		return errors.New("workflow.workers must be positive")
	}
	if c.Workflow.DownloadTimeout <= 0 {
		return errors.New("workflow.download_timeout must be positive (seconds)")
	}
	if c.Notify.RequestTimeout <= 0 {
		return errors.New("notify.request_timeout must be positive (seconds)")
	}
	return nil
}
