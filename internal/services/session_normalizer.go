package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"sessionlink/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Candidate keys per logical field, highest priority first
var (
	userIDFields        = []string{"userId", "UserId"}
	sessionNameFields   = []string{"sessionName"}
	smileFields         = []string{"smilePercentage", "SmilePercentage"}
	neutralFields       = []string{"neutralPercentage", "NeutralPercentage"}
	surprisedFields     = []string{"surprisedPercentage", "SurprisedPercentage"}
	expressionCountKeys = []string{"totalExpressionCount", "TotalExpressionCount"}
)

// NormalizeSession maps a raw stored document into the external record shape.
// Picked values are carried over as stored apart from BSON-specific types,
// which become their JSON-friendly equivalents. It never fails.
func NormalizeSession(doc bson.M) *models.SessionRecord {
	if doc == nil {
		return nil
	}

	record := &models.SessionRecord{
		ID:           normalizeValue(doc[primaryKeyField]),
		ChatMessages: normalizeChatMessages(doc["chatMessages"]),
		CreatedAt:    normalizeValue(doc["createdAt"]),
		UpdatedAt:    normalizeValue(doc["updatedAt"]),
		StartTime:    normalizeValue(doc["startTime"]),
		EndTime:      normalizeValue(doc["endTime"]),
		Metadata:     normalizeValue(doc["metadata"]),
		Source:       normalizeValue(doc["source"]),
	}

	if v, ok := pickFirst(doc, sessionIDFields); ok {
		record.SessionID = stringify(v)
	}
	if v, ok := pickFirst(doc, userIDFields); ok {
		record.UserID = stringify(v)
	}
	if v, ok := pickFirst(doc, sessionNameFields); ok {
		record.SessionName = stringify(v)
	}
	if v, ok := pickFirst(doc, smileFields); ok {
		record.SmilePercentage = normalizeValue(v)
	}
	if v, ok := pickFirst(doc, neutralFields); ok {
		record.NeutralPercentage = normalizeValue(v)
	}
	if v, ok := pickFirst(doc, surprisedFields); ok {
		record.SurprisedPercentage = normalizeValue(v)
	}
	if v, ok := pickFirst(doc, expressionCountKeys); ok {
		record.TotalExpressionCount = normalizeValue(v)
	}

	if info := doc["serverInfo"]; !isFalsy(info) {
		record.ServerInfo = normalizeValue(info)
	}

	return record
}

// pickFirst returns the value of the first key whose value is present and
// non-blank once rendered as a string. Later keys never override earlier ones.
func pickFirst(doc bson.M, keys []string) (interface{}, bool) {
	for _, key := range keys {
		v, ok := doc[key]
		if !ok || isBlank(v) {
			continue
		}
		return v, true
	}
	return nil, false
}

func isBlank(v interface{}) bool {
	switch val := v.(type) {
	case nil, primitive.Null, primitive.Undefined:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case bson.A:
		return len(val) == 0
	case []interface{}:
		return len(val) == 0
	}
	return false
}

func isFalsy(v interface{}) bool {
	if isBlank(v) {
		return true
	}
	switch val := v.(type) {
	case bool:
		return !val
	case int32:
		return val == 0
	case int64:
		return val == 0
	case float64:
		return val == 0 || math.IsNaN(val)
	}
	return false
}

func stringify(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	case primitive.ObjectID:
		return val.Hex()
	case primitive.Decimal128:
		return val.String()
	}
	return fmt.Sprint(v)
}

// normalizeChatMessages keeps every element of a stored array in order;
// anything that is not an array becomes empty
func normalizeChatMessages(v interface{}) []interface{} {
	switch val := v.(type) {
	case bson.A:
		return normalizeSlice(val)
	case []interface{}:
		return normalizeSlice(val)
	}
	return []interface{}{}
}

// normalizeValue converts BSON-specific values into JSON-friendly ones,
// descending into documents and arrays. Everything else is returned as is.
func normalizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case primitive.DateTime:
		return val.Time().UTC()
	case primitive.Timestamp:
		return time.Unix(int64(val.T), 0).UTC()
	case primitive.Decimal128:
		return val.String()
	case primitive.Null, primitive.Undefined:
		return nil
	case float64:
		// NaN and Inf cannot be encoded as JSON
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil
		}
		return val
	case bson.M:
		return normalizeMap(val)
	case map[string]interface{}:
		return normalizeMap(val)
	case bson.D:
		m := make(map[string]interface{}, len(val))
		for _, e := range val {
			m[e.Key] = normalizeValue(e.Value)
		}
		return m
	case bson.A:
		return normalizeSlice(val)
	case []interface{}:
		return normalizeSlice(val)
	}
	return v
}

func normalizeMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeSlice(items []interface{}) []interface{} {
	out := make([]interface{}, len(items))
	for i, item := range items {
		out[i] = normalizeValue(item)
	}
	return out
}
