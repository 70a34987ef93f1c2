// Package config provides configuration parsing for the vfiber CLI.
//
// The configuration is stored in vfiber.json in the working directory.
// This package handles loading, saving, and validating configuration.
//
// # Configuration File Structure
//
//	{
//	  "log": {
//	    "level": "debug",
//	    "format": "text"
//	  },
//	  "engine": {
//	    "yieldThreshold": "1ms",
//	    "maxRenderPhaseUpdates": 25
//	  },
//	  "loop": {
//	    "sliceBudget": "5ms",
//	    "maxQueue": 256
//	  },
//	  "inspect": {
//	    "host": "localhost",
//	    "port": 7070,
//	    "tracing": false
//	  },
//	  "bench": {
//	    "rows": 1000,
//	    "iterations": 50
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.LoadOrDefault(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Inspector:", cfg.InspectURL())
package config
