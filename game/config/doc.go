// Package config loads, caches and saves match configurations.
//
// Configurations are JSON files in a directory, one match per file:
//
//	{
//	  "name": "classic",
//	  "description": "Classic 7x7 match, boards facing north",
//	  "orientation": "north",
//	  "countdown_ticks": 5,
//	  "messages": {"hit": "%s scored a hit! (%d/16)"}
//	}
//
// The file name without ".json" is the config ID used when creating a
// session. Every file is checked with engine.ValidateGameConfig before it is
// cached; invalid files are skipped by ListConfigs.
//
// The default configuration is classic.json when present, otherwise the
// first valid file, otherwise engine.DefaultConfig.
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//	east, err := manager.LoadConfig("east")
package config
