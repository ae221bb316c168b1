// Package codec переводит значения между представлением в коде и TEXT-колонками хранилища.
//
// Структурированные значения (map, slice, struct) хранятся как JSON-строка. При чтении
// строка разбирается обратно; отдельный случай: колонка, целиком содержащая base64-картинку
// (data URL), возвращается списком из одного URL. Вся логика JSON-in-TEXT изолирована здесь,
// чтобы переход на нативные JSON-колонки не затрагивал вызывающих.
package codec

import (
	"encoding/json"
	"reflect"
	"regexp"
	"strings"
	"time"
)

// dataURLPattern: та же форма, что генерирует загрузчик картинок витрины.
// Якорь на "data:image/...;base64," вместо голых подстрок "data" и "base64":
// иначе комментарий со словом "database" превращался бы в пустой список картинок.
var dataURLPattern = regexp.MustCompile(`data:image/[a-zA-Z]+;base64,[A-Za-z0-9+/=]+`)

// wholeDataURL: значение колонки и есть картинка, без окружающего текста.
var wholeDataURL = regexp.MustCompile(`^data:image/[a-zA-Z]+;base64,[A-Za-z0-9+/=]+$`)

var timeType = reflect.TypeOf(time.Time{})

// Encode готовит значение к записи: структурированное -> JSON-строка, примитивы без изменений.
// Если значение не сериализуется (каналы, функции внутри map), оно отдается драйверу как есть -
// драйвер сам вернет понятную ошибку.
func Encode(v any) any {
	if !isStructured(v) {
		return v
	}
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	return string(data)
}

// Decode восстанавливает значение, прочитанное из колонки.
//
// Порядок для строк:
//  1. строка целиком data URL картинки -> []any{url};
//  2. JSON-объект или массив -> результат json.Unmarshal как есть
//     (массив картинок так и остается списком строк);
//  3. иначе строка возвращается без изменений.
//
// Data URL внутри текста или JSON-документа (сообщение с вставленной картинкой,
// снимок записи в журнале) ничего не извлекает: документ разбирается целиком.
// Голые JSON-скаляры ("123", "true") не разбираются: имя товара "123" должно остаться строкой.
// []byte (mysql отдает TEXT байтами) трактуется как строка. Остальное без изменений.
func Decode(raw any) any {
	var s string
	switch v := raw.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return raw
	}

	trimmed := strings.TrimSpace(s)
	if wholeDataURL.MatchString(trimmed) {
		return []any{trimmed}
	}

	if looksLikeJSON(trimmed) {
		var parsed any
		if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil {
			return parsed
		}
	}
	return s
}

// DecodeRecord прогоняет через Decode каждую колонку строки.
func DecodeRecord(row map[string]any) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		out[k] = Decode(v)
	}
	return out
}

// ExtractDataURLs возвращает все data URL картинок из произвольного текста в порядке появления.
// Decode его не использует: это поиск, а не разбор колонки.
func ExtractDataURLs(s string) []string {
	if !strings.Contains(s, "data:image/") {
		return nil
	}
	return dataURLPattern.FindAllString(s, -1)
}

func looksLikeJSON(s string) bool {
	if s == "" {
		return false
	}
	return s[0] == '{' || s[0] == '['
}

func isStructured(v any) bool {
	if v == nil {
		return false
	}
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Map, reflect.Array:
		return true
	case reflect.Slice:
		return t.Elem().Kind() != reflect.Uint8 // []byte уходит в драйвер как BLOB/TEXT
	case reflect.Struct:
		return t != timeType
	default:
		return false
	}
}
