package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

type Application struct {
	Addr     string   `koanf:"addr"`
	Timezone string   `koanf:"timezone"`
	Database Database `koanf:"db"`
	Storage  Storage  `koanf:"storage"`
	Nearby   Nearby   `koanf:"nearby"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

// Storage points at the public object storage serving uploaded images.
type Storage struct {
	PublicURL string `koanf:"publicurl"`
}

// Nearby holds the defaults for nearby event lookups.
type Nearby struct {
	RadiusMeters  float64 `koanf:"radiusmeters"`
	LookaheadDays int     `koanf:"lookaheaddays"`
	Limit         int     `koanf:"limit"`
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Application{
		Addr:     ":8181",
		Timezone: "America/New_York",
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "ourphil",
			Pass:   "",
			Name:   "ourphil",
			Schema: "public",
		},
		Nearby: Nearby{
			RadiusMeters:  1609,
			LookaheadDays: 45,
			Limit:         20,
		},
	}, "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "OURPHIL_",
		TransformFunc: func(k, v string) (string, any) {
			// Transform the key.
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "OURPHIL_")), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}
