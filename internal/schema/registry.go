// Package schema holds the static Annex IV section registry: required fields,
// completeness weights, and display titles per section key. The tables are
// process-initialized constants; nothing mutates them, so no synchronization
// is needed.
package schema

import "sort"

// Required fields per section key. Field order matters for report rendering.
var requiredFields = map[string][]string{
	"ANNEX4.GENERAL": {
		"provider_name",
		"provider_address",
		"system_name",
		"system_version",
		"conformity_declaration_date",
	},
	"ANNEX4.INTENDED_PURPOSE": {
		"intended_purpose_description",
		"target_users",
		"deployment_context",
		"reasonably_foreseeable_misuse",
	},
	"ANNEX4.SYSTEM_DESCRIPTION": {
		"architecture_overview",
		"technical_components",
		"input_data_description",
		"output_data_description",
		"dependencies",
	},
	"ANNEX4.RISK_MANAGEMENT": {
		"risk_management_system_description",
		"identified_risks",
		"risk_mitigation_measures",
		"residual_risks",
		"risk_acceptability_criteria",
	},
	"ANNEX4.DATA_GOVERNANCE": {
		"training_data_sources",
		"training_data_characteristics",
		"data_quality_measures",
		"data_preprocessing_steps",
		"bias_assessment",
		"data_protection_measures",
	},
	"ANNEX4.MODEL_TECHNICAL": {
		"model_architecture",
		"training_methodology",
		"hyperparameters",
		"feature_engineering",
		"model_validation_approach",
	},
	"ANNEX4.PERFORMANCE": {
		"performance_metrics",
		"test_dataset_description",
		"performance_results",
		"performance_across_subgroups",
		"benchmark_comparison",
	},
	"ANNEX4.HUMAN_OVERSIGHT": {
		"oversight_measures",
		"human_review_process",
		"override_capabilities",
		"competence_requirements",
	},
	"ANNEX4.LOGGING": {
		"logging_capabilities",
		"logged_events",
		"log_retention_period",
		"log_access_controls",
		"traceability_measures",
	},
	"ANNEX4.ACCURACY_ROBUSTNESS_CYBERSEC": {
		"accuracy_requirements",
		"robustness_testing",
		"cybersecurity_measures",
		"resilience_to_attacks",
		"fail_safe_mechanisms",
	},
	"ANNEX4.POST_MARKET_MONITORING": {
		"monitoring_plan",
		"feedback_mechanisms",
		"incident_reporting_procedures",
		"continuous_improvement_process",
	},
	"ANNEX4.CHANGE_MANAGEMENT": {
		"change_management_process",
		"version_control_procedures",
		"update_notification_process",
		"regression_testing_approach",
	},
}

// Relative completeness weights. They happen to sum to 100 but the engine
// always normalizes by the actual sum, so the invariant is "relative", not
// "sums to 100".
var weights = map[string]float64{
	"ANNEX4.GENERAL":                      5.0,
	"ANNEX4.INTENDED_PURPOSE":             8.0,
	"ANNEX4.SYSTEM_DESCRIPTION":           10.0,
	"ANNEX4.RISK_MANAGEMENT":              15.0,
	"ANNEX4.DATA_GOVERNANCE":              12.0,
	"ANNEX4.MODEL_TECHNICAL":              10.0,
	"ANNEX4.PERFORMANCE":                  10.0,
	"ANNEX4.HUMAN_OVERSIGHT":              8.0,
	"ANNEX4.LOGGING":                      7.0,
	"ANNEX4.ACCURACY_ROBUSTNESS_CYBERSEC": 10.0,
	"ANNEX4.POST_MARKET_MONITORING":       5.0,
	"ANNEX4.CHANGE_MANAGEMENT":            0.0,
}

var titles = map[string]string{
	"ANNEX4.GENERAL":                      "General Information",
	"ANNEX4.INTENDED_PURPOSE":             "Intended Purpose",
	"ANNEX4.SYSTEM_DESCRIPTION":           "System Description",
	"ANNEX4.RISK_MANAGEMENT":              "Risk Management System",
	"ANNEX4.DATA_GOVERNANCE":              "Data Governance",
	"ANNEX4.MODEL_TECHNICAL":              "Model & Technical Documentation",
	"ANNEX4.PERFORMANCE":                  "Performance Metrics",
	"ANNEX4.HUMAN_OVERSIGHT":              "Human Oversight",
	"ANNEX4.LOGGING":                      "Logging & Traceability",
	"ANNEX4.ACCURACY_ROBUSTNESS_CYBERSEC": "Accuracy, Robustness & Cybersecurity",
	"ANNEX4.POST_MARKET_MONITORING":       "Post-Market Monitoring",
	"ANNEX4.CHANGE_MANAGEMENT":            "Change Management",
}

// sortedKeys is computed once at init; Keys returns copies of it.
var sortedKeys = func() []string {
	keys := make([]string, 0, len(weights))
	for k := range weights {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}()

// RequiredFields returns the ordered required field names for a section key.
// Unknown keys have no requirements.
func RequiredFields(key string) []string {
	fields, ok := requiredFields[key]
	if !ok {
		return nil
	}
	out := make([]string, len(fields))
	copy(out, fields)
	return out
}

// Weight returns the completeness weight for a section key, 0 for unknown keys.
func Weight(key string) float64 {
	return weights[key]
}

// TotalWeight returns the sum of all registry weights.
func TotalWeight() float64 {
	var total float64
	for _, w := range weights {
		total += w
	}
	return total
}

// Title returns the human-readable section title, falling back to the key.
func Title(key string) string {
	if t, ok := titles[key]; ok {
		return t
	}
	return key
}

// Keys returns all registered section keys in lexicographic order.
func Keys() []string {
	out := make([]string, len(sortedKeys))
	copy(out, sortedKeys)
	return out
}

// IsRegistered reports whether key is one of the fixed section keys.
func IsRegistered(key string) bool {
	_, ok := weights[key]
	return ok
}
