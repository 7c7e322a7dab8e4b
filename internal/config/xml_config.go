// Package config provides XML-based configuration management for the folder
// sharing server.
package config

import (
	"encoding/xml"
	"fmt"
	"os"
	"strconv"
)

// AppConfig represents the root XML configuration structure
type AppConfig struct {
	XMLName xml.Name `xml:"ServeFolder"`

	// Server configuration
	Server ServerConfig `xml:"Server"`

	// ZIP streaming configuration
	Zip ZipConfig `xml:"Zip"`

	// Advanced options
	Advanced AdvancedConfig `xml:"Advanced"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port        int    `xml:"Port"`
	BindAddress string `xml:"BindAddress"`
	EnableCORS  bool   `xml:"EnableCORS"`
	ReadTimeout int    `xml:"ReadTimeoutSeconds"`
	IdleTimeout int    `xml:"IdleTimeoutSeconds"`
}

// ZipConfig contains ZIP streaming and operation tracking settings
type ZipConfig struct {
	ChunkSizeKB            int `xml:"ChunkSizeKB"`
	CompressionLevel       int `xml:"CompressionLevel"`
	OperationTTLMinutes    int `xml:"OperationTTLMinutes"`
	CleanupIntervalMinutes int `xml:"CleanupIntervalMinutes"`
}

// AdvancedConfig contains advanced/tuning options
type AdvancedConfig struct {
	EnableRequestLogging bool `xml:"EnableRequestLogging"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:        8080,
			BindAddress: "0.0.0.0",
			EnableCORS:  false,
			ReadTimeout: 30,
			IdleTimeout: 120,
		},
		Zip: ZipConfig{
			ChunkSizeKB:            64,
			CompressionLevel:       6,
			OperationTTLMinutes:    5,
			CleanupIntervalMinutes: 1,
		},
		Advanced: AdvancedConfig{
			EnableRequestLogging: true,
		},
	}
}

// LoadConfig loads configuration from XML file
func LoadConfig(configPath string) (*AppConfig, error) {
	// If file doesn't exist, create default
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config := DefaultConfig()
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		config.applyEnvironmentOverrides()
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &AppConfig{}
	if err := xml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyEnvironmentOverrides()

	return config, nil
}

// Save saves the configuration to XML file
func (c *AppConfig) Save(configPath string) error {
	output, err := xml.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(xml.Header + "\n<!-- serve-folder configuration -->\n<!-- This file is auto-generated on first run -->\n\n")
	content := append(header, output...)

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}
	if bind := os.Getenv("BIND_ADDRESS"); bind != "" {
		c.Server.BindAddress = bind
	}
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// ChunkSize returns the ZIP streaming copy buffer size in bytes
func (c *AppConfig) ChunkSize() int {
	return c.Zip.ChunkSizeKB * 1024
}
