// Package config provides configuration parsing for navtree projects.
//
// The configuration is stored in navtree.json at the project root.
// This package handles loading, saving, and validating configuration.
//
// # Configuration File Structure
//
//	{
//	  "manifest": "routes.hcl",
//	  "server": {
//	    "host": "0.0.0.0",
//	    "port": 8080,
//	    "readTimeout": "10s",
//	    "allowedOrigins": ["https://app.example.com"]
//	  },
//	  "assets": {
//	    "prefix": "/assets/",
//	    "fingerprints": "manifest.json",
//	    "s3": {
//	      "bucket": "site-views",
//	      "prefix": "views/",
//	      "region": "eu-west-1"
//	    }
//	  },
//	  "metrics": {"enabled": true, "path": "/metrics"},
//	  "tracing": {"enabled": true, "tracerName": "navtree"},
//	  "log": {"level": "debug", "format": "json"}
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Listening on", cfg.Address())
package config
