package config

import (
	"io/ioutil"
	"net/url"
	"os"
	"strings"

	"github.com/pkg/errors"

	"code.cloudfoundry.org/bytefmt"

	yaml "gopkg.in/yaml.v2"
)

const (
	DefaultRegion   = "us-east-1"
	DefaultEndpoint = "https://s3.amazonaws.com"
)

type Config struct {
	Credentials         CredentialsConfig
	Region              string
	Endpoint            string
	Logging             LoggingConfig
	MaxResponseBodySize string `yaml:"max_response_body_size"`
}

type CredentialsConfig struct {
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	SessionToken    string `yaml:"session_token"`
}

type LoggingConfig struct {
	Level string
}

func (config *Config) EndpointURL() *url.URL {
	u, e := url.Parse(config.Endpoint)
	if e != nil {
		panic("Unexpected error: " + e.Error())
	}
	return u
}

func (config *Config) MaxResponseBodySizeBytes() uint64 {
	if config.MaxResponseBodySize == "" {
		return 0
	}
	bytes, e := bytefmt.ToBytes(config.MaxResponseBodySize)
	if e != nil {
		panic("Unexpected error: " + e.Error())
	}
	return bytes
}

// LoadConfig reads the yaml config from filename and fills empty credential
// and region fields from the process environment (AWS_ACCESS_KEY_ID,
// AWS_SECRET_ACCESS_KEY, AWS_SESSION_TOKEN, AWS_DEFAULT_REGION). An empty
// filename skips the file and configures from the environment alone.
func LoadConfig(filename string) (config Config, err error) {
	if filename != "" {
		file, e := os.Open(filename)
		if e != nil {
			return Config{}, errors.New("error opening config. Caused by: " + e.Error())
		}
		defer file.Close()
		content, e := ioutil.ReadAll(file)
		if e != nil {
			return Config{}, errors.New("error reading config. Caused by: " + e.Error())
		}
		e = yaml.Unmarshal(content, &config)
		if e != nil {
			return Config{}, errors.New("error parsing config. Caused by: " + e.Error())
		}
	}

	if config.Credentials.AccessKeyID == "" {
		config.Credentials.AccessKeyID = os.Getenv("AWS_ACCESS_KEY_ID")
	}
	if config.Credentials.SecretAccessKey == "" {
		config.Credentials.SecretAccessKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	}
	if config.Credentials.SessionToken == "" {
		config.Credentials.SessionToken = os.Getenv("AWS_SESSION_TOKEN")
	}
	if config.Region == "" {
		config.Region = os.Getenv("AWS_DEFAULT_REGION")
	}
	if config.Region == "" {
		config.Region = DefaultRegion
	}
	if config.Endpoint == "" {
		config.Endpoint = DefaultEndpoint
	}

	var errs []string
	if config.Credentials.AccessKeyID == "" {
		errs = append(errs, "access_key_id must not be empty (or set AWS_ACCESS_KEY_ID)")
	}
	if config.Credentials.SecretAccessKey == "" {
		errs = append(errs, "secret_access_key must not be empty (or set AWS_SECRET_ACCESS_KEY)")
	}
	endpoint, e := url.Parse(config.Endpoint)
	if e != nil {
		errs = append(errs, "endpoint is invalid. Caused by: "+e.Error())
	} else if endpoint.Host == "" {
		errs = append(errs, "endpoint host must not be empty")
	}
	if config.MaxResponseBodySize != "" {
		_, e := bytefmt.ToBytes(config.MaxResponseBodySize)
		if e != nil {
			errs = append(errs, "max_response_body_size is invalid. Caused by: "+e.Error())
		}
	}
	if len(errs) > 0 {
		return Config{}, errors.New("error in config values: " + strings.Join(errs, "; "))
	}
	return
}
