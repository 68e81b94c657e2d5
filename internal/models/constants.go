package models

const (
	// DateLayout формат даты в запросах к API
	DateLayout = "2006-01-02"

	// SlotTimeLayout формат времени начала/конца слота
	SlotTimeLayout = "15:04"

	// PhoneDigits количество цифр номера без кода страны
	PhoneDigits = 10

	// OTPLength длина одноразового кода
	OTPLength = 6

	// MinNameLength минимальная длина имени пользователя
	MinNameLength = 2

	// DefaultCountryCode код страны, добавляемый к номеру
	DefaultCountryCode = "+91"

	// DefaultCancelWindowMinutes минимальный запас до начала брони для отмены
	DefaultCancelWindowMinutes = 120

	// DefaultDateRangeDays сколько дней вперед показывать при выборе даты
	DefaultDateRangeDays = 7

	// DefaultCacheTTL время жизни кэша GET-запросов
	DefaultCacheTTL = 5 * 60 // 5 минут в секундах

	// DefaultAPITimeout таймаут HTTP-клиента
	DefaultAPITimeout = 10 // секунд
)
