// Package media derives image URLs and chart colours for drivers, teams and
// circuits. Every function is pure: the same inputs always give the same URL.
package media

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	imageBase       = "https://media.formula1.com/image/upload"
	driverPhotoPath = imageBase + "/f_auto,c_limit,q_75,w_1320/content/dam/fom-website/drivers/%dDrivers/%s"
	teamLogoPath    = imageBase + "/f_auto,c_limit,q_75,w_1320/content/dam/fom-website/2018-redesign-assets/team%%20logos/%s"
	teamCarPath     = imageBase + "/f_auto,c_limit,q_75,w_1320/content/dam/fom-website/teams/%d/%s.png"
	circuitMapPath  = imageBase + "/f_auto,c_limit,q_auto,w_1320/content/dam/fom-website/2018-redesign-assets/Circuit%%20maps%%2016x9/%s"
	trackIconPath   = imageBase + "/f_auto,c_limit,w_1440,q_auto/f_auto/q_auto/content/dam/fom-website/2018-redesign-assets/Track%%20icons%%204x3/%s%%20carbon"
)

//go:embed teams.yaml
var teamsYAML []byte

type override struct {
	Slug string   `yaml:"slug"`
	IDs  []string `yaml:"ids"`
	Logo string   `yaml:"logo"`
	Car  string   `yaml:"car"`
}

type teamTable struct {
	DefaultColor string            `yaml:"default_color"`
	Colors       map[string]string `yaml:"colors"`
	Overrides    []override        `yaml:"overrides"`
}

var (
	teams      = mustLoadTeams(teamsYAML)
	whitespace = regexp.MustCompile(`\s+`)
)

func mustLoadTeams(data []byte) teamTable {
	var t teamTable
	if err := yaml.Unmarshal(data, &t); err != nil {
		panic(fmt.Sprintf("media: parsing team table: %v", err))
	}
	return t
}

// Slug lowercases a team name and joins its words with dashes.
func Slug(name string) string {
	return whitespace.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}

func DriverPhotoURL(familyName string, year int) string {
	return fmt.Sprintf(driverPhotoPath, year, strings.ToLower(familyName))
}

func findOverride(constructorID, name string) (override, bool) {
	slug := Slug(name)
	for _, o := range teams.Overrides {
		if o.Slug == slug {
			return o, true
		}
		for _, id := range o.IDs {
			if id == constructorID {
				return o, true
			}
		}
	}
	return override{}, false
}

// ConstructorLogoURL prefers the override table over the computed pattern.
func ConstructorLogoURL(constructorID, name string) string {
	if o, ok := findOverride(constructorID, name); ok && o.Logo != "" {
		return o.Logo
	}
	return fmt.Sprintf(teamLogoPath, Slug(name))
}

func ConstructorCarURL(constructorID, name string, year int) string {
	if o, ok := findOverride(constructorID, name); ok && o.Car != "" {
		return o.Car
	}
	return fmt.Sprintf(teamCarPath, year, Slug(name))
}

// TrackImageURL returns the circuit map keyed by locality, or by country when
// fallback is set (some circuit maps are only published under the country).
func TrackImageURL(locality, country string, fallback bool) string {
	name := locality
	if fallback {
		name = country
	}
	return fmt.Sprintf(circuitMapPath, whitespace.ReplaceAllString(name, "_")+"_Circuit")
}

func TrackIconURL(locality, country string) string {
	name := locality
	if name == "" {
		name = country
	}
	return fmt.Sprintf(trackIconPath, whitespace.ReplaceAllString(name, "%20"))
}

// TeamColor returns the chart colour for a constructor, grey when unknown.
func TeamColor(constructorID string) string {
	if c, ok := teams.Colors[constructorID]; ok {
		return c
	}
	return teams.DefaultColor
}
