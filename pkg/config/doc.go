// Package config provides configuration loading for the CostKatana library.
//
// Configuration is read from a YAML file, completed with defaults,
// overridden by environment variables, and validated. All validation
// failures are collected into a single ValidationError.
//
// # Loading
//
//	cfg, err := config.LoadWithEnvOverrides("costkatana.yaml")
//	if err != nil {
//	    var verr config.ValidationError
//	    if errors.As(err, &verr) {
//	        for _, fe := range verr.Errors {
//	            fmt.Println(fe.Field, fe.Message)
//	        }
//	    }
//	}
//
// Programs that do not ship a file use Default().
//
// # Environment Overrides
//
// Variables follow the COSTKATANA_SECTION_FIELD convention, for example:
//
//	COSTKATANA_STORAGE_BACKEND=sqlite
//	COSTKATANA_STORAGE_SQLITE_PATH=/var/lib/costkatana/usage.db
//	COSTKATANA_RETENTION_DAYS=30
//	COSTKATANA_TELEMETRY_LOGGING_LEVEL=debug
//	COSTKATANA_PROVIDERS_OPENAI_API_KEY=sk-...
//
// # Example File
//
//	storage:
//	  backend: file
//	  file:
//	    path: ./data/usage.json
//	retention:
//	  days: 90
//	pricing:
//	  custom:
//	    my-finetune:
//	      provider: openai
//	      input_price: 3.0
//	      output_price: 6.0
//	      unit: per-1m-tokens
//	tokens:
//	  counter: tiktoken
//	optimizer:
//	  ai_enabled: true
//	  provider: anthropic
//	  model: claude-3-haiku-20240307
//	telemetry:
//	  logging:
//	    level: info
//	    format: json
//
// # Hot Reload
//
// Watcher observes the configuration file with fsnotify and invokes a
// callback with the freshly loaded configuration after a debounce interval.
// A file that fails to load or validate is logged and ignored.
package config
