package domain

import "errors"

var (
	// ErrNoQuestions is returned when the question bank is empty.
	ErrNoQuestions = errors.New("no questions available")
	// ErrInvalidName is returned when the submitted name is missing or shorter than 2 characters after trimming.
	ErrInvalidName = errors.New("invalid user name")
	// ErrNoAnswers is returned when a submission carries an empty answer set.
	ErrNoAnswers = errors.New("no answers provided")
	// ErrInvalidQuestionIDs is returned when no answer-set key parses as a question id.
	ErrInvalidQuestionIDs = errors.New("invalid question ids")
	// ErrQuestionsNotFound indicates none of the submitted ids exist in the bank.
	ErrQuestionsNotFound = errors.New("questions not found")
	// ErrResultNotSaved indicates the score was computed but the attempt could not be persisted.
	ErrResultNotSaved = errors.New("result not saved")
)
