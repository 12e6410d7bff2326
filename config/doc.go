// Package config loads longscribe configuration.
//
// Values are resolved in this order, later sources winning:
//
//  1. defaults (Config.ApplyDefaults)
//  2. config.yml, when found in the search paths or given explicitly
//  3. .env.local, then .env (godotenv never overrides variables already set)
//  4. process environment, auto-bound to nested keys
//  5. command-line flags, applied by the caller
//
// Environment variables map onto nested keys by splitting on underscores, so
// DASHSCOPE_API_KEY sets dashscope.api_key and OPENAI_MODEL sets
// openai.model. A few historical names are aliased explicitly, e.g.
// SUPABASE_SERVICE_ROLE_KEY sets storage.secret_key.
package config
