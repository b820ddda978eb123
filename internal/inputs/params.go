package inputs

import (
	"errors"
	"time"

	"github.com/devicecloud-dev/device-cloud-for-maestro/internal/config"
)

// ErrMissingAppSource is returned when neither or both of app-file and
// app-binary-id are set.
var ErrMissingAppSource = errors.New("either app-file or app-binary-id must be used")

// Params is the normalized set of action inputs.
type Params struct {
	APIKey string `input:"api-key" validate:"required"`
	APIURL string `input:"api-url" validate:"required,url"`

	AppFile                string   `input:"app-file"`
	AppBinaryID            string   `input:"app-binary-id"`
	AdditionalAppFiles     []string `input:"additional-app-files"`
	AdditionalAppBinaryIDs []string `input:"additional-app-binary-ids"`

	Workspace    string   `input:"workspace"`
	Name         string   `input:"name"`
	IncludeTags  []string `input:"include-tags"`
	ExcludeTags  []string `input:"exclude-tags"`
	ExcludeFlows string   `input:"exclude-flows"`
	Env          []EnvVar `input:"env"`

	AndroidAPILevel int    `input:"android-api-level" validate:"gte=0"`
	AndroidDevice   string `input:"android-device" validate:"omitempty,android_device"`
	IOSVersion      int    `input:"ios-version" validate:"gte=0"`
	IOSDevice       string `input:"ios-device" validate:"omitempty,ios_device"`
	DeviceLocale    string `input:"device-locale"`
	Orientation     string `input:"orientation" validate:"omitempty,oneof=0 90 180 270"`
	GooglePlay      bool   `input:"google-play"`
	X86Arch         bool   `input:"x86-arch"`

	Async             bool   `input:"async"`
	IgnoreSHACheck    bool   `input:"ignore-sha-check"`
	DownloadArtifacts string `input:"download-artifacts" validate:"omitempty,oneof=ALL FAILED"`
	Report            string `input:"report" validate:"omitempty,oneof=junit html"`
	Retry             int    `input:"retry" validate:"gte=0,lte=2"`
	MaestroVersion    string `input:"maestro-version"`

	DCDVersion     string        `input:"dcd-version" validate:"required"`
	StatusInterval time.Duration `input:"status-interval" validate:"gt=0"`
	StatusTimeout  time.Duration `input:"status-timeout" validate:"gtefield=StatusInterval"`
}

// Load reads every input from src, falling back to the resolved project
// configuration for api-url, dcd-version and the status polling bounds.
// The returned Params are always valid.
func Load(src Source, defaults *config.ResolvedConfig) (*Params, error) {
	defaults = withDefaults(defaults)

	p := &Params{
		APIKey:                 src.Get("api-key"),
		APIURL:                 orDefault(src.Get("api-url"), defaults.APIURL),
		AppFile:                src.Get("app-file"),
		AppBinaryID:            src.Get("app-binary-id"),
		AdditionalAppFiles:     ParseList(src.Get("additional-app-files")),
		AdditionalAppBinaryIDs: ParseList(src.Get("additional-app-binary-ids")),
		Workspace:              src.Get("workspace"),
		Name:                   src.Get("name"),
		IncludeTags:            ParseTags(src.Get("include-tags")),
		ExcludeTags:            ParseTags(src.Get("exclude-tags")),
		ExcludeFlows:           src.Get("exclude-flows"),
		DeviceLocale:           src.Get("device-locale"),
		Orientation:            src.Get("orientation"),
		GooglePlay:             ParseBool(src.Get("google-play")),
		X86Arch:                ParseBool(src.Get("x86-arch")),
		Async:                  ParseBool(src.Get("async")),
		IgnoreSHACheck:         ParseBool(src.Get("ignore-sha-check")),
		DownloadArtifacts:      src.Get("download-artifacts"),
		Report:                 src.Get("report"),
		MaestroVersion:         src.Get("maestro-version"),
		DCDVersion:             orDefault(src.Get("dcd-version"), defaults.DCDVersion),
	}

	var err error
	if p.AndroidDevice, err = ParseAndroidDevice(src.Get("android-device")); err != nil {
		return nil, err
	}
	if p.IOSDevice, err = ParseIOSDevice(src.Get("ios-device")); err != nil {
		return nil, err
	}
	if p.AndroidAPILevel, err = ParseInt("android-api-level", src.Get("android-api-level")); err != nil {
		return nil, err
	}
	if p.IOSVersion, err = ParseInt("ios-version", src.Get("ios-version")); err != nil {
		return nil, err
	}
	if p.Retry, err = ParseInt("retry", src.Get("retry")); err != nil {
		return nil, err
	}
	if p.StatusInterval, err = ParseDuration("status-interval", src.Get("status-interval"), defaults.StatusInterval); err != nil {
		return nil, err
	}
	if p.StatusTimeout, err = ParseDuration("status-timeout", src.Get("status-timeout"), defaults.StatusTimeout); err != nil {
		return nil, err
	}
	if p.Env, err = ParseEnv(splitLines(src.Get("env"))); err != nil {
		return nil, err
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks enum membership, required inputs and app source exclusivity.
func (p *Params) Validate() error {
	if (p.AppFile == "") == (p.AppBinaryID == "") {
		return ErrMissingAppSource
	}
	if err := newValidator().Struct(p); err != nil {
		return translate(err)
	}
	return nil
}

// LoadStatus reads the inputs needed to query an existing upload: the api key
// and url, the dcd version and the polling bounds. App sources are not required.
func LoadStatus(src Source, defaults *config.ResolvedConfig) (*Params, error) {
	defaults = withDefaults(defaults)
	p := &Params{
		APIKey:     src.Get("api-key"),
		APIURL:     orDefault(src.Get("api-url"), defaults.APIURL),
		DCDVersion: orDefault(src.Get("dcd-version"), defaults.DCDVersion),
		Async:      ParseBool(src.Get("async")),
	}
	var err error
	if p.StatusInterval, err = ParseDuration("status-interval", src.Get("status-interval"), defaults.StatusInterval); err != nil {
		return nil, err
	}
	if p.StatusTimeout, err = ParseDuration("status-timeout", src.Get("status-timeout"), defaults.StatusTimeout); err != nil {
		return nil, err
	}
	err = newValidator().StructPartial(p, "APIKey", "APIURL", "DCDVersion", "StatusInterval", "StatusTimeout")
	if err != nil {
		return nil, translate(err)
	}
	return p, nil
}

func withDefaults(defaults *config.ResolvedConfig) *config.ResolvedConfig {
	if defaults != nil {
		return defaults
	}
	return &config.ResolvedConfig{
		APIURL:         config.DefaultAPIURL,
		DCDVersion:     config.DefaultDCDVersion,
		StatusInterval: config.DefaultStatusInterval,
		StatusTimeout:  config.DefaultStatusTimeout,
	}
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
