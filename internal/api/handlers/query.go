package handlers

import (
	"net/http"
	"strconv"
	"strings"
)

// QueryBool читает булев query параметр. Отсутствующий параметр = false
func QueryBool(r *http.Request, key string) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return false, nil
	}
	return strconv.ParseBool(raw)
}

// QueryInt читает обязательный целый query параметр
func QueryInt(r *http.Request, key string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(r.URL.Query().Get(key)))
}

// QueryOptionalInt читает необязательный целый query параметр. nil, если не задан
func QueryOptionalInt(r *http.Request, key string) (*int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
