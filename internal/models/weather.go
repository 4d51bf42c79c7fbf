// internal/models/weather.go
package models

// Weather is the typed result of a weather lookup for a location.
type Weather struct {
	Location string         `json:"location"`
	Current  CurrentWeather `json:"current"`
	Forecast []ForecastDay  `json:"forecast,omitempty"`
}

type CurrentWeather struct {
	TempC     float64 `json:"temp_c"`
	Condition string  `json:"condition"`
}

type ForecastDay struct {
	Date      string  `json:"date"`
	MaxTempC  float64 `json:"maxtemp_c"`
	MinTempC  float64 `json:"mintemp_c"`
	Condition string  `json:"condition"`
}
