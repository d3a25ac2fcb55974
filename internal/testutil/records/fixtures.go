package records

import "github.com/Veraticus/feedgen/internal/model"

// Feedback holds a small feedback pool per sentiment.
var Feedback = map[model.Sentiment][]string{
	model.SentimentPositive: {
		"Absolutely love it",
		"Fast delivery, great quality",
		"Works perfectly, setup was easy",
	},
	model.SentimentNeutral: {
		"It is okay",
		"Does the job",
	},
	model.SentimentNegative: {
		"Stopped working after a week",
		"Arrived damaged",
		"Not as described",
	},
}

// Products is the product fixture.
var Products = []string{"Laptop", "Smartphone", "Coffee Maker", "Backpack"}

// Names is the customer name fixture.
var Names = []string{"Ada Byron", "Alan Turing", "Grace Hopper", "Edsger Dijkstra", "Barbara Liskov"}

// Cities is the location fixture.
var Cities = []string{"Boston", "Leeds", "Denver", "Austin"}
