package evaluation

import "errors"

var (
	ErrNotEvaluator       = errors.New("only designated evaluators can submit evaluations")
	ErrEvaluatorNotFound  = errors.New("evaluator not found")
	ErrEmployeeNotMember  = errors.New("employee is not a member of this workspace")
	ErrEvaluationNotFound = errors.New("evaluation not found")
)
