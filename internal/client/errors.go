package client

import "fmt"

// AuthError учётные данные отклонены или сессия истекла (401/403).
// Клиент не сбрасывает токен сам — решает вызывающий код.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("acceso denegado (%d): %s", e.Status, e.Message)
}

// ConnError сетевой сбой: сервер недоступен, соединение оборвано.
// Повтор — дело пользователя, автоматических ретраев нет.
type ConnError struct {
	Err error
}

func (e *ConnError) Error() string {
	return fmt.Sprintf("no se pudo conectar con el servidor: %v", e.Err)
}

func (e *ConnError) Unwrap() error { return e.Err }

// APIError структурная ошибка бэкенда: не-2xx статус либо 2xx с полем error в теле.
// Оба случая сводятся сюда, чтобы ядру не приходилось гадать о форме ответа.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("error del servidor: %d", e.Status)
}
