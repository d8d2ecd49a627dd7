package sequence

import "time"

// Message is one line of narration and how long it stays on screen.
type Message struct {
	Text     string        `json:"text"`
	Duration time.Duration `json:"duration"`
}

// Sequence is a run of messages played back to back. Exactly one of
// TriggerAfter and TriggerKm is meaningful, depending on which table
// the sequence lives in.
type Sequence struct {
	ID           string        `json:"id"`
	Skippable    bool          `json:"skippable"`
	TriggerAfter time.Duration `json:"-"`
	TriggerKm    float64       `json:"-"`
	Messages     []Message     `json:"messages"`
}

func msg(text string, seconds float64) Message {
	return Message{Text: text, Duration: time.Duration(seconds * float64(time.Second))}
}

// TimeSequences trigger on elapsed time since the journey started.
var TimeSequences = []Sequence{
	{
		ID:           "onboarding",
		TriggerAfter: 3 * time.Second,
		Skippable:    true,
		Messages: []Message{
			msg("And so it begins.", 3),
			msg("Even though you've already travelled at least a few meters, you've probably already noticed that getting around the world is going to take awhile.", 6),
			msg("Feel free to get on a bike or into a car or something faster with the controls below.", 5),
			msg("It's still going to take you awhile.", 3),
			msg("You've probably noticed that in this trip around Earth, we've made you very focussed.", 4),
			msg("We've removed the need for you to eat, sleep and rest - and a lot of other obstacles.", 5),
			msg("In a real straight-line journey around the planet, you'd also have the problem of walking (or driving) into the ocean.", 6),
			msg("For this trip, though, please enjoy your magic sidewalk.", 4),
			msg("P.S. Don't worry about sitting here and staring at the screen for days, weeks or months. You can reload this page, close the browser, or even turn the computer on and off, and it'll remember where you're at in your journey.", 8),
			msg("Just don't clear cookies.", 3),
			msg("You can voluntarily restart by clicking the Restart button below.", 4),
			msg("Have fun!", 3),
		},
	},
	{
		ID:           "great-circle-intro",
		TriggerAfter: 60 * time.Second,
		Skippable:    true,
		Messages: []Message{
			msg("A 'great circle' is a type of circumnavigation that has the same radius as the Earth itself.", 5),
			msg("It's the maximum distance you can travel in a straight line - about 40,041 km.", 4),
			msg("All lines of longitude and the equator are 'great circle routes.'", 4),
			msg("Actually, any straightline path around the earth that comes back to its starting point - as long the circle that it makes would slice through the exact center of the earth - is a great circle route.", 7),
			msg("Later, you'll be able to set waypoints and your angle of travel.", 4),
			msg("But for now, this journey is equatorial.", 3),
			msg("At least you're on the most famous great circle.", 3),
		},
	},
}

// DistanceSequences trigger on absolute distance travelled.
var DistanceSequences = []Sequence{
	{
		ID:        "haversine",
		TriggerKm: 500,
		Skippable: true,
		Messages: []Message{
			msg("The distance between two points on Earth is calculated with the Haversine formula, to account for the fact that it's a sphere.", 6),
			msg("It's been in use by sailors since the early 1800s.", 3),
		},
	},
	{
		ID:        "approaching-1000",
		TriggerKm: 998,
		Skippable: true,
		Messages: []Message{
			msg("This journey around the equator is the longest great circle, because the Earth bulges in the middle.", 5),
			msg("If you were to circle the globe over the North and South Poles, your trip would be 67.154 km shorter.", 5),
			msg("We'll have some fun with destinations later.", 3),
			msg("In the meantime, you're coming up on 1000 KM. Congratulations.", 4),
		},
	},
	{
		ID:        "five-thousand",
		TriggerKm: 5000,
		Skippable: true,
		Messages: []Message{
			msg("Congratulations on your first 5000km.", 3),
			msg("If you were in walking mode this whole time, at 5 km/h, this journey would take about 334 days of continuous walking.", 6),
			msg("Probably good that we've given you magic walking, at least.", 4),
		},
	},
	{
		ID:        "quarter-way",
		TriggerKm: 10010.22,
		Skippable: true,
		Messages: []Message{
			msg("Can you believe that you've made it a quarter of the way?", 4),
		},
	},
	{
		ID:        "longest-land",
		TriggerKm: 11241,
		Skippable: true,
		Messages: []Message{
			msg("You've just passed the distance of the longest land-only straight line on Earth.", 5),
			msg("It runs between Sagres, Portugal and Jinjiang, China.", 4),
			msg("From here on, any real walking route would require a boat.", 4),
		},
	},
	{
		ID:        "antipode",
		TriggerKm: 20020.72,
		Skippable: true,
		Messages: []Message{
			msg("You've reached the halfway point in your circumnavigation, called the ANTIPODE. Congratulations.", 5),
		},
	},
	{
		ID:        "three-quarters",
		TriggerKm: 30031.08,
		Skippable: true,
		Messages: []Message{
			msg("Three-quarters of the way around. The finish line is in sight.", 4),
			msg("Well, 10,010 km away. But still.", 3),
		},
	},
	{
		ID:        "almost-there",
		TriggerKm: 40000,
		Skippable: true,
		Messages: []Message{
			msg("40000 km! Incredible!", 3),
			msg("You've almost made it. Keep going.", 3),
		},
	},
}
