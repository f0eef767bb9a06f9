package repository

import "errors"

var ErrNotFound = errors.New("запись не найдена")

// ErrStatusConflict - условное обновление не прошло: статус уже не тот,
// от которого стартовал переход (проигравший в гонке двух акторов)
var ErrStatusConflict = errors.New("конфликт статуса задачи")
