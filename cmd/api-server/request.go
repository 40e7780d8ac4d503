package main

import (
	"net/http"
	"strconv"
	"strings"
)

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

func defaultIntQueryParams(r *http.Request, key string, def int) int {
	val, ok := r.URL.Query().Get(key), r.URL.Query().Has(key)
	if !ok {
		return def
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return i
}

func defaultStringQueryParams(r *http.Request, key string, def string) string {
	val, ok := r.URL.Query().Get(key), r.URL.Query().Has(key)
	if !ok || val == "" {
		return def
	}
	return val
}
