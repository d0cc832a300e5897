// Package locale picks a default narration voice from the system timezone.
package locale

import (
	"strings"

	tz "github.com/medama-io/go-timezone-country"
	"github.com/thlib/go-timezone-local/tzlocal"

	"github.com/linuxmatters/arianator/internal/overlay"
)

// DefaultVoice is the Persian piper voice. It is also the fallback when the
// timezone is unknown or maps to a country without a listed voice.
const DefaultVoice = "fa_IR-gyro-medium"

// Voice returns the voice model name for the local timezone.
func Voice() string {
	timezone, err := tzlocal.RuntimeTZ()
	if err != nil {
		return DefaultVoice
	}
	return VoiceForTimezone(timezone)
}

// VoiceForTimezone returns the voice model name for an IANA timezone.
func VoiceForTimezone(timezone string) string {
	if timezone == "" || timezone == "UTC" || timezone == "GMT" || strings.HasPrefix(timezone, "Etc/") {
		return DefaultVoice
	}

	tzMap, err := tz.NewTimezoneCountryMap()
	if err != nil {
		return DefaultVoice
	}

	country, err := tzMap.GetCountry(timezone)
	if err != nil {
		return DefaultVoice
	}

	return voiceForCountry(country)
}

func voiceForCountry(country string) string {
	if voice, ok := countryVoices[country]; ok {
		return voice
	}
	return DefaultVoice
}

// countryVoices maps countries to piper voices in their main language.
// Both short and formal country names are listed.
var countryVoices = map[string]string{
	// Persian
	"Iran":                      "fa_IR-gyro-medium",
	"Iran, Islamic Republic of": "fa_IR-gyro-medium",
	"Afghanistan":               "fa_IR-gyro-medium",

	// Arabic
	"Jordan":               "ar_JO-kareem-medium",
	"Saudi Arabia":         "ar_JO-kareem-medium",
	"United Arab Emirates": "ar_JO-kareem-medium",
	"Iraq":                 "ar_JO-kareem-medium",
	"Kuwait":               "ar_JO-kareem-medium",
	"Qatar":                "ar_JO-kareem-medium",
	"Bahrain":              "ar_JO-kareem-medium",
	"Oman":                 "ar_JO-kareem-medium",
	"Egypt":                "ar_JO-kareem-medium",

	// English
	"United States":  "en_US-lessac-medium",
	"Canada":         "en_US-lessac-medium",
	"United Kingdom": "en_GB-alan-medium",
	"Ireland":        "en_GB-alan-medium",
	"Australia":      "en_GB-alan-medium",
	"New Zealand":    "en_GB-alan-medium",

	// Europe
	"Germany":     "de_DE-thorsten-medium",
	"Austria":     "de_DE-thorsten-medium",
	"France":      "fr_FR-siwis-medium",
	"Spain":       "es_ES-davefx-medium",
	"Mexico":      "es_MX-ald-medium",
	"Italy":       "it_IT-riccardo-x_low",
	"Netherlands": "nl_NL-mls-medium",
	"Turkey":      "tr_TR-dfki-medium",
	"Türkiye":     "tr_TR-dfki-medium",
	"Russia":      "ru_RU-irina-medium",
}

// rtlLanguages are the language codes written right to left.
var rtlLanguages = map[string]bool{
	"fa": true,
	"ar": true,
	"he": true,
	"ur": true,
}

// Language returns the ISO 639-1 code at the start of a piper voice name:
// fa_IR-gyro-medium → fa. Paths and the .onnx suffix are ignored.
func Language(voice string) string {
	voice = voice[strings.LastIndexAny(voice, `/\`)+1:]
	if i := strings.IndexAny(voice, "_-."); i >= 0 {
		voice = voice[:i]
	}
	return strings.ToLower(voice)
}

// Direction returns the overlay direction for the voice's language.
func Direction(voice string) overlay.Direction {
	if rtlLanguages[Language(voice)] {
		return overlay.RTL
	}
	return overlay.LTR
}
