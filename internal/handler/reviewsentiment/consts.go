package reviewsentiment

type response struct {
	Label string `json:"label"`
	Score int    `json:"score"`
}

const (
	PositiveLabel = "Positive"
	NeutralLabel  = "Neutral"
	NegativeLabel = "Negative"

	minScore = 0
	maxScore = 5

	SENTIMENT_ANALYSIS_INSTRUCTION string = `Analyze the restaurant review enclosed within <rev> </rev> tags.
	Assign exactly one label from the provided list of labels that describes the overall sentiment of the review.
	Additionally, give a sentiment score between 0 and 5, where 0 is very negative and 5 is very positive.
	Generate a JSON formated response with the 'label' and 'score' keys and nothing else.
	Example:
	{
		"label": label,
		"score": score
	}

	<labels>Positive, Neutral, Negative</labels>

	<rev>%s</rev>`
)
