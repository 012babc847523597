// Package config loads process configuration for the metaworld binaries.
//
// Values come, in increasing precedence, from built-in defaults, an optional
// YAML file, .env files and the environment. Environment variables use the
// METAWORLD_ prefix with dots replaced by underscores (METAWORLD_LOG_LEVEL);
// provider API keys are also read from their conventional names such as
// OPENAI_API_KEY.
package config
