package models

import "errors"

var (
	// ErrReferrerNotFound возвращается, когда указанный реферер не существует
	ErrReferrerNotFound = errors.New("реферер не найден")
	// ErrDistributorNotFound возвращается, когда дистрибьютор не существует
	ErrDistributorNotFound = errors.New("дистрибьютор не найден")
	// ErrValidation оборачивает ошибки валидации входных данных
	ErrValidation = errors.New("ошибка валидации")
	// ErrCycleDetected возвращается, если граф рефереров содержит цикл
	ErrCycleDetected = errors.New("обнаружен цикл в реферальной сети")
)
