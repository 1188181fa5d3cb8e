// Package i18n holds the bot's reply strings in the supported languages.
package i18n

import (
	"fmt"
	"strings"
)

// Fallback is used when a user's language is absent or unsupported.
const Fallback = "en"

// Resolve maps a Telegram language_code to a supported language tag.
func Resolve(code string) string {
	if strings.HasPrefix(code, "ru") {
		return "ru"
	}
	return Fallback
}

// T formats the string under key for lang, falling back to English for
// unknown languages and keys.
func T(lang, key string, args ...any) string {
	tbl, ok := tables[lang]
	if !ok {
		tbl = tables[Fallback]
	}
	format, ok := tbl[key]
	if !ok {
		format = tables[Fallback][key]
	}
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

var tables = map[string]map[string]string{
	"en": {
		"start": "🤖 Bot started!\n\n" +
			"⏰ All times are in %s time\n\n" +
			"/time HH:MM — set delivery time\n" +
			"/add <station_id> — add station\n" +
			"/list — list stations\n" +
			"/del <number from /list> — remove station\n" +
			"/clear — remove all stations\n" +
			"/stations — available stations\n" +
			"/send — send report now\n" +
			"/status — bot status\n" +
			"/on — enable delivery\n" +
			"/off — disable delivery",
		"time_set":             "⏰ Time set to %s (%s)",
		"time_example":         "Example: /time 09:00",
		"station_added":        "✅ Station %d added",
		"station_add_example":  "Example: /add 12345",
		"station_removed":      "🗑 Station %d removed",
		"station_del_example":  "Example: /del 1",
		"stations_cleared":     "🧹 All stations removed",
		"stations_empty":       "Stations list is empty",
		"delivery_on":          "✅ Delivery enabled",
		"delivery_off":         "❌ Delivery disabled",
		"user_not_found":       "User not found. Send /start first.",
		"fetch_error":          "Error fetching data: %v",
		"no_data":              "No data available",
		"another_stations":     "Another %s stations: %s",
		"status_header":        "📊 *Bot status*\n\n",
		"status_delivery":      "Delivery: %s\n",
		"status_time":          "Time: %s (%s)\n",
		"status_count":         "Stations: %d\n",
		"status_list_header":   "\n📍 Stations:\n",
		"status_enabled":       "✅ enabled",
		"status_disabled":      "❌ disabled",
		"stations_available":   "📡 Available stations in %s:\n\n%s\n\nUse /add <id> to subscribe.",
		"stations_all":         "📡 All sea stations:\n\n%s\n\nUse /add <id> to subscribe.",
		"stations_fetch_error": "Error fetching stations: %v",
		"internal_error":       "Something went wrong. Please try again later.",
	},
	"ru": {
		"start": "🤖 Бот запущен!\n\n" +
			"⏰ Всё время указывается в зоне %s\n\n" +
			"/time HH:MM — время рассылки\n" +
			"/add <id_станции> — добавить станцию\n" +
			"/list — список станций\n" +
			"/del <номер из /list> — удалить станцию\n" +
			"/clear — удалить все станции\n" +
			"/stations — доступные станции\n" +
			"/send — отправить отчёт сейчас\n" +
			"/status — статус бота\n" +
			"/on — включить рассылку\n" +
			"/off — выключить рассылку",
		"time_set":             "⏰ Время установлено: %s (%s)",
		"time_example":         "Пример: /time 09:00",
		"station_added":        "✅ Станция %d добавлена",
		"station_add_example":  "Пример: /add 12345",
		"station_removed":      "🗑 Станция %d удалена",
		"station_del_example":  "Пример: /del 1",
		"stations_cleared":     "🧹 Все станции удалены",
		"stations_empty":       "Список станций пуст",
		"delivery_on":          "✅ Рассылка включена",
		"delivery_off":         "❌ Рассылка выключена",
		"user_not_found":       "Пользователь не найден. Отправьте /start.",
		"fetch_error":          "Ошибка получения данных: %v",
		"no_data":              "Нет данных",
		"another_stations":     "Другие станции %s: %s",
		"status_header":        "📊 *Статус бота*\n\n",
		"status_delivery":      "Рассылка: %s\n",
		"status_time":          "Время: %s (%s)\n",
		"status_count":         "Станций: %d\n",
		"status_list_header":   "\n📍 Станции:\n",
		"status_enabled":       "✅ включена",
		"status_disabled":      "❌ выключена",
		"stations_available":   "📡 Доступные станции в регионе %s:\n\n%s\n\nДобавить: /add <id>",
		"stations_all":         "📡 Все морские станции:\n\n%s\n\nДобавить: /add <id>",
		"stations_fetch_error": "Ошибка получения станций: %v",
		"internal_error":       "Что-то пошло не так. Попробуйте позже.",
	},
}
