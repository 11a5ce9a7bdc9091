package emotion

// Emoji returns the badge shown next to a detected emotion.
func Emoji(label Label) string {
	switch label {
	case Sadness:
		return "😢"
	case Joy:
		return "😊"
	case Anxiety:
		return "😰"
	case Stress:
		return "😫"
	case Fatigue:
		return "😴"
	case Frustration:
		return "😤"
	default:
		return "😐"
	}
}

// DisplayName returns the Spanish label for the UI.
func DisplayName(label Label) string {
	switch label {
	case Sadness:
		return "Tristeza"
	case Joy:
		return "Alegría"
	case Anxiety:
		return "Ansiedad"
	case Stress:
		return "Estrés"
	case Fatigue:
		return "Cansancio"
	case Frustration:
		return "Frustración"
	default:
		return "Neutral"
	}
}

// Tone names the colour family the frontend uses for a label.
func Tone(label Label) string {
	switch label {
	case Sadness:
		return "blue"
	case Joy:
		return "green"
	case Anxiety:
		return "purple"
	case Stress:
		return "red"
	case Fatigue:
		return "slate"
	case Frustration:
		return "orange"
	default:
		return "white"
	}
}
