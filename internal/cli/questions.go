package cli

import "quizzy-service/internal/domain"

// defaultQuestions seeds the in-memory bank when no Postgres is configured.
// In production the questions table is populated out-of-band.
func defaultQuestions() []domain.Question {
	return []domain.Question{
		{
			ID:      1,
			Prompt:  "What is the capital of France?",
			OptionA: "Berlin", OptionB: "Madrid", OptionC: "Paris", OptionD: "Rome",
			CorrectAnswer: domain.OptionC,
		},
		{
			ID:      2,
			Prompt:  "Which planet is known as the Red Planet?",
			OptionA: "Venus", OptionB: "Mars", OptionC: "Jupiter", OptionD: "Saturn",
			CorrectAnswer: domain.OptionB,
		},
		{
			ID:      3,
			Prompt:  "What is the largest ocean on Earth?",
			OptionA: "Atlantic", OptionB: "Indian", OptionC: "Arctic", OptionD: "Pacific",
			CorrectAnswer: domain.OptionD,
		},
		{
			ID:      4,
			Prompt:  "Who wrote 'Romeo and Juliet'?",
			OptionA: "William Shakespeare", OptionB: "Charles Dickens", OptionC: "Jane Austen", OptionD: "Mark Twain",
			CorrectAnswer: domain.OptionA,
		},
		{
			ID:      5,
			Prompt:  "What is the chemical symbol for gold?",
			OptionA: "Go", OptionB: "Gd", OptionC: "Au", OptionD: "Ag",
			CorrectAnswer: domain.OptionC,
		},
		{
			ID:      6,
			Prompt:  "How many continents are there?",
			OptionA: "Five", OptionB: "Six", OptionC: "Seven", OptionD: "Eight",
			CorrectAnswer: domain.OptionC,
		},
		{
			ID:      7,
			Prompt:  "What is the smallest prime number?",
			OptionA: "0", OptionB: "1", OptionC: "2", OptionD: "3",
			CorrectAnswer: domain.OptionC,
		},
	}
}
