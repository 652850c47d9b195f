// Package config provides configuration parsing for dragsort projects.
//
// The configuration is stored in dragsort.json at the project root.
// This package handles loading, saving, and validating configuration.
//
// # Configuration File Structure
//
//	{
//	  "name": "kanban",
//	  "server": {
//	    "host": "localhost",
//	    "port": 3000,
//	    "readTimeout": "60s",
//	    "writeTimeout": "10s",
//	    "pingInterval": "30s",
//	    "maxMessageSize": 65536,
//	    "viewportWidth": 1024
//	  },
//	  "board": {
//	    "page": "board.html",
//	    "elements": ".card",
//	    "anchors": ".card-handle",
//	    "containers": ".column",
//	    "placeholder": "<div class=\"drop-here\"></div>",
//	    "draggingClass": "dragging",
//	    "hoveringClass": "hovering"
//	  },
//	  "log": {
//	    "level": "info",
//	    "format": "text"
//	  }
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
