package services

import (
	"net/url"
	"strings"

	"sessionlink/pkg/auth"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session-id keys written by different client generations, in match order
var (
	sessionIDFields  = []string{"sessionId", "SessionId"}
	externalIDFields = []string{"externalId", "externalID"}
)

const primaryKeyField = "_id"

// LookupClause matches a single field against a value
type LookupClause struct {
	Field string
	Value interface{}
}

// LookupQuery is a set of alternative clauses combined with $or.
// The store's first match is authoritative.
type LookupQuery struct {
	ID      string
	Clauses []LookupClause
}

// ResolveSessionID picks the canonical lookup key. A session id embedded in a
// verified token overrides the request path id unconditionally.
func ResolveSessionID(rawID string, claims *auth.LinkClaims) (string, error) {
	if claims != nil {
		if id := strings.TrimSpace(string(claims.SessionID)); id != "" {
			return id, nil
		}
	}

	id := rawID
	if decoded, err := url.PathUnescape(rawID); err == nil {
		id = decoded
	}
	id = strings.TrimSpace(id)

	if id == "" {
		return "", ErrMissingIdentifier
	}
	return id, nil
}

// BuildLookupQuery builds the OR query for id. The _id clause is only added
// when id parses as an ObjectID, otherwise the driver would reject the filter.
func BuildLookupQuery(id string) LookupQuery {
	q := LookupQuery{ID: id}

	for _, field := range sessionIDFields {
		q.Clauses = append(q.Clauses, LookupClause{Field: field, Value: id})
	}
	for _, field := range externalIDFields {
		q.Clauses = append(q.Clauses, LookupClause{Field: field, Value: id})
	}

	// Only the 24-character hex form is treated as an ObjectID; 12-byte raw
	// strings stay plain identifiers
	if primitive.IsValidObjectID(id) {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			q.Clauses = append(q.Clauses, LookupClause{Field: primaryKeyField, Value: oid})
		}
	}

	return q
}

// HasPrimaryKeyClause reports whether the query matches on _id
func (q LookupQuery) HasPrimaryKeyClause() bool {
	for _, c := range q.Clauses {
		if c.Field == primaryKeyField {
			return true
		}
	}
	return false
}

// Filter renders the query as a MongoDB filter document
func (q LookupQuery) Filter() bson.M {
	or := make(bson.A, 0, len(q.Clauses))
	for _, c := range q.Clauses {
		or = append(or, bson.M{c.Field: c.Value})
	}
	return bson.M{"$or": or}
}
