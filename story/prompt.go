package story

import (
	"fmt"

	"github.com/ecoinsight/ecoinsight/core"
)

// ClimateSummary renders an observation as the compact snapshot string that
// is fed into the prompt and stored alongside the generated narrative.
func ClimateSummary(obs *core.Observation) string {
	return fmt.Sprintf(
		"- Temperature: %.1f°C\n- Weather: %s\n- Humidity: %d%%\n- Wind Speed: %.1f m/s\n- Air Quality Index: %d (PM2.5 %.1f, PM10 %.1f)",
		obs.Temperature, obs.Condition, obs.Humidity, obs.WindSpeed, obs.AQI, obs.PM25, obs.PM10,
	)
}

// ClimatePrompt builds the narrative generation prompt for a city from its
// climate data summary.
func ClimatePrompt(city, summary string) string {
	return fmt.Sprintf(`You are a climate communication expert. Based on the following climate data, write an engaging and informative summary that explains what this means for residents of %s in a human-centered way:

%s

Your summary should:
- Start with a striking local fact or change (e.g., temperature rise or rainfall changes)
- Explain what it means for daily life, health, or the environment in %s
- Be clear, non-technical, and emotionally resonant
- Avoid fictional stories or made-up characters
- Use second-person ("you", "your city") language when appropriate

Keep it under 300 words. End with a hopeful or action-oriented message.`,
		city, summary, city)
}
