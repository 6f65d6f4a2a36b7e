// Package config defines the data structures related to configuration and
// includes functions for loading, resolving, and validating scenario files.
package config

import (
	"fmt"

	"github.com/proformatools/proforma/internal/montecarlo"
	"github.com/proformatools/proforma/internal/sensitivity"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for a proforma run.
type Configuration struct {
	Scenario ScenarioConfig
	Defaults AssumptionsConfig `yaml:"defaults,omitempty"`
	Analysis AnalysisConfig    `yaml:"analysis,omitempty"`
	Logging  LoggingConfig     `yaml:"logging,omitempty"`
	Output   OutputConfig      `yaml:"output,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
}

// ScenarioConfig describes one development scenario as written in YAML.
type ScenarioConfig struct {
	Name        string
	Timeline    TimelineConfig
	Cost        CostConfig
	Revenue     RevenueConfig
	Assumptions AssumptionsConfig `yaml:"assumptions,omitempty"`
}

// TimelineConfig holds the phase durations.
type TimelineConfig struct {
	PredevelopmentMonths int `mapstructure:"predevelopmentMonths" yaml:"predevelopmentMonths"`
	ConstructionMonths   int `mapstructure:"constructionMonths" yaml:"constructionMonths"`
	LeaseUpMonths        int `mapstructure:"leaseUpMonths" yaml:"leaseUpMonths"`
	OperatingYears       int `mapstructure:"operatingYears" yaml:"operatingYears"`
}

// CostConfig holds the capital cost figures from the cost estimator.
type CostConfig struct {
	TotalCost     float64   `mapstructure:"totalCost" yaml:"totalCost"`
	Disbursements []float64 `mapstructure:"disbursements" yaml:"disbursements,omitempty"`
}

// RevenueConfig holds the stabilized operating figures from the revenue
// estimator.
type RevenueConfig struct {
	AnnualGrossIncome       float64 `mapstructure:"annualGrossIncome" yaml:"annualGrossIncome"`
	AnnualOperatingExpenses float64 `mapstructure:"annualOperatingExpenses" yaml:"annualOperatingExpenses"`
}

// AssumptionsConfig mirrors finance.EconomicAssumptions with optional
// fields. Pointers distinguish "not set" from zero so the resolution step
// can apply its precedence chain.
type AssumptionsConfig struct {
	DiscountRate  *float64 `mapstructure:"discountRate" yaml:"discountRate,omitempty"`
	CapRate       *float64 `mapstructure:"capRate" yaml:"capRate,omitempty"`
	VacancyRate   *float64 `mapstructure:"vacancyRate" yaml:"vacancyRate,omitempty"`
	TaxRate       *float64 `mapstructure:"taxRate" yaml:"taxRate,omitempty"`
	RentGrowth    *float64 `mapstructure:"rentGrowth" yaml:"rentGrowth,omitempty"`
	ExpenseGrowth *float64 `mapstructure:"expenseGrowth" yaml:"expenseGrowth,omitempty"`
	CostFactor    *float64 `mapstructure:"costFactor" yaml:"costFactor,omitempty"`
}

// AnalysisConfig selects the optional sub-analyses and their parameters.
type AnalysisConfig struct {
	Sensitivity   bool                       `mapstructure:"sensitivity" yaml:"sensitivity,omitempty"`
	Perturbations []sensitivity.Perturbation `mapstructure:"perturbations" yaml:"perturbations,omitempty"`
	MonteCarlo    bool                       `mapstructure:"monteCarlo" yaml:"monteCarlo,omitempty"`
	Iterations    int                        `mapstructure:"iterations" yaml:"iterations,omitempty"`
	Seed          uint64                     `mapstructure:"seed" yaml:"seed,omitempty"`
	Distributions []montecarlo.Distribution  `mapstructure:"distributions" yaml:"distributions,omitempty"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()

	viper.SetConfigType("yml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	err := viper.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}
