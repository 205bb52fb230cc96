package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	TelegramBot TelegramBot
	ErgastAPI   ErgastAPI
	Views       Views
	Schedule    Schedule
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":80"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
}

type TelegramBot struct {
	Token  string `envconfig:"TELEGRAM_TOKEN" required:"true"`
	ChatID int64  `envconfig:"CHAT_ID" required:"true"`
}

type ErgastAPI struct {
	BaseURL string `envconfig:"ERGAST_BASE_URL" default:"https://api.jolpi.ca/ergast/f1"`
	Limit   int    `envconfig:"ERGAST_LIMIT" default:"100"`
}

type Views struct {
	CalendarOrder     string        `envconfig:"CALENDAR_ORDER" default:"reverse-chronological"`
	LapChartTotalLaps int           `envconfig:"LAP_CHART_TOTAL_LAPS" default:"58"`
	LapChartDeriveLap bool          `envconfig:"LAP_CHART_DERIVE_LAPS" default:"false"`
	CountdownInterval time.Duration `envconfig:"COUNTDOWN_INTERVAL" default:"60s"`
}

type Schedule struct {
	Timezone string `envconfig:"SCHEDULE_TIMEZONE" default:"Europe/London"`
}

func New() (*Config, error) {
	var c Config
	err := envconfig.Process("", &c)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
