// Package config provides configuration parsing for the toast server.
//
// The configuration is stored in toast.json, toast.yaml or toast.yml.
// This package handles loading, saving, and validating configuration, and
// converts the defaults section into a toast.DefaultsPatch.
//
// # Configuration File Structure
//
//	{
//	  "name": "checkout",
//	  "server": {
//	    "address": "localhost:4310",
//	    "readTimeout": "10s",
//	    "shutdownTimeout": "5s",
//	    "allowedOrigins": ["https://shop.example.com"],
//	    "clientBuffer": 32
//	  },
//	  "defaults": {
//	    "position": "top-center",
//	    "duration": "4s",
//	    "dismissOnClick": true,
//	    "icons": {"error": "url:/img/error.svg", "info": "none"}
//	  },
//	  "log": {"level": "info", "format": "json"},
//	  "metrics": {"enabled": true, "namespace": "toast", "path": "/metrics"}
//	}
//
// Durations are Go duration strings. A defaults duration of "0s" makes
// toasts sticky unless a call overrides it.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	patch, _ := cfg.DefaultsPatch()
//	store.SetDefaults(patch)
package config
