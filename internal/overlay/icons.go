package overlay

import (
	"strings"

	"github.com/BangBK2510/Digital-Map-Project/internal/common"
)

// DefaultIcon is served for symbol codes the lookup does not recognize.
const DefaultIcon = "/weather_icons/default.png"

// symbolIcons maps the prediction service's met.no-style symbol codes to
// bundled icon paths.
var symbolIcons = map[string]string{
	"clearsky_day":       "/weather_icons/sunny.png",
	"clearsky_night":     "/weather_icons/sunny.png",
	"fair_day":           "/weather_icons/partly_cloudy.png",
	"fair_night":         "/weather_icons/partly_cloudy.png",
	"partlycloudy_day":   "/weather_icons/partly_cloudy.png",
	"partlycloudy_night": "/weather_icons/partly_cloudy.png",
	"cloudy":             "/weather_icons/cloudy.png",
	"rain":               "/weather_icons/rainy.png",
	"lightrain":          "/weather_icons/rainy.png",
	"heavyrain":          "/weather_icons/rainy.png",
	"rainshowers_day":    "/weather_icons/rainy.png",
	"snow":               "/weather_icons/snow.png",
	"sleet":              "/weather_icons/rainy.png",
	"fog":                "/weather_icons/fog.png",
	"thunderstorm":       "/weather_icons/thunderstorm.png",
}

// IconFor resolves a symbol code to an icon path. Unknown codes fall back
// to a substring match over common condition words and finally to
// DefaultIcon; the lookup never fails.
func IconFor(symbol string) string {
	s := strings.ToLower(strings.TrimSpace(symbol))
	if s == "" {
		return DefaultIcon
	}
	if icon, ok := symbolIcons[s]; ok {
		return icon
	}

	switch {
	case common.HasAny(s, "thunder", "storm"):
		return "/weather_icons/thunderstorm.png"
	case common.HasAny(s, "rain", "shower", "drizzle", "sleet"):
		return "/weather_icons/rainy.png"
	case common.HasAny(s, "snow"):
		return "/weather_icons/snow.png"
	case common.HasAny(s, "partlycloudy", "fair"):
		return "/weather_icons/partly_cloudy.png"
	case common.HasAny(s, "cloud", "overcast"):
		return "/weather_icons/cloudy.png"
	case common.HasAny(s, "clear", "sunny", "fine"):
		return "/weather_icons/sunny.png"
	case common.HasAny(s, "fog", "mist", "haze"):
		return "/weather_icons/fog.png"
	}

	return DefaultIcon
}
