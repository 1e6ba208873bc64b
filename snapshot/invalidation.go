package snapshot

import (
	"context"
	"log"
	"reflect"
	"regexp"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

const previousPostsKey = "snapshot:previous_posts"

// previousPosts are the posts a media or comment row belonged to before an
// update rewrote its post_id.
type previousPosts struct {
	ids []uint
	all bool
}

// Raw statements that write to a table a snapshot is built from.
var rawSnapshotWrite = regexp.MustCompile(`(?is)^\s*(insert|update|delete|replace|drop|alter)\b.*\b(post|media|comment)\b`)

// RegisterInvalidation evicts snapshots after any write to a post or to its
// media and comments, including raw SQL.
func RegisterInvalidation(db *gorm.DB) error {
	cb := db.Callback()
	if err := cb.Create().After("gorm:create").Register("snapshot:evict_create", evictAffected); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register("snapshot:capture_previous", capturePrevious); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register("snapshot:evict_update", evictAffected); err != nil {
		return err
	}
	if err := cb.Delete().After("gorm:delete").Register("snapshot:evict_delete", evictAffected); err != nil {
		return err
	}
	return cb.Raw().After("gorm:raw").Register("snapshot:evict_raw", evictRawWrite)
}

func statementContext(db *gorm.DB) context.Context {
	if db.Statement.Context == nil {
		return context.Background()
	}
	return db.Statement.Context
}

// capturePrevious records the current post_id of media and comments whose
// post_id is about to be written, so moving a child evicts the post it left.
func capturePrevious(db *gorm.DB) {
	if db.Error != nil || db.Statement.Schema == nil {
		return
	}
	switch db.Statement.Schema.Table {
	case "media", "comment":
	default:
		return
	}

	postField := db.Statement.Schema.LookUpField("post_id")
	primary := db.Statement.Schema.PrioritizedPrimaryField
	if postField == nil || primary == nil || !writesColumn(db.Statement, postField) {
		return
	}

	pks, ok := recordValues(db, primary)
	if !ok {
		db.InstanceSet(previousPostsKey, previousPosts{all: true})
		return
	}

	var ids []uint
	err := db.Session(&gorm.Session{NewDB: true}).
		Table(db.Statement.Schema.Table).
		Where(primary.DBName+" IN ?", pks).
		Pluck(postField.DBName, &ids).Error
	if err != nil {
		log.Printf("snapshot could not read previous posts: %v", err)
		db.InstanceSet(previousPostsKey, previousPosts{all: true})
		return
	}
	db.InstanceSet(previousPostsKey, previousPosts{ids: ids})
}

func writesColumn(stmt *gorm.Statement, field *schema.Field) bool {
	if dest, ok := stmt.Dest.(map[string]interface{}); ok {
		_, byColumn := dest[field.DBName]
		_, byName := dest[field.Name]
		return byColumn || byName
	}
	selected, restricted := stmt.SelectAndOmitColumns(false, true)
	if v, ok := selected[field.DBName]; ok {
		return v
	}
	return !restricted
}

func evictAffected(db *gorm.DB) {
	if db.Error != nil || db.Statement.Schema == nil {
		return
	}

	var field *schema.Field
	switch db.Statement.Schema.Table {
	case "post":
		field = db.Statement.Schema.PrioritizedPrimaryField
	case "media", "comment":
		field = db.Statement.Schema.LookUpField("post_id")
	default:
		return
	}

	ctx := statementContext(db)
	ids, ok := recordValues(db, field)
	if prev, found := db.InstanceGet(previousPostsKey); found {
		p := prev.(previousPosts)
		ok = ok && !p.all
		ids = append(ids, p.ids...)
	}
	if !ok {
		if err := evictPrefix(ctx, keyPrefix); err != nil {
			log.Printf("snapshot eviction failed: %v", err)
		}
		return
	}

	seen := make(map[uint]bool, len(ids))
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		keys = append(keys, PostKey(id))
	}
	if err := evict(ctx, keys...); err != nil {
		log.Printf("snapshot eviction failed for %v: %v", keys, err)
	}
}

// evictRawWrite drops every snapshot after raw SQL touching a snapshot
// table. The affected posts cannot be read off the statement.
func evictRawWrite(db *gorm.DB) {
	if db.Error != nil || !rawSnapshotWrite.MatchString(db.Statement.SQL.String()) {
		return
	}
	if err := evictPrefix(statementContext(db), keyPrefix); err != nil {
		log.Printf("snapshot eviction failed: %v", err)
	}
}

// recordValues reads field off the statement's records. It reports false
// when any record lacks a value, as with a bulk Where(...).Delete.
func recordValues(db *gorm.DB, field *schema.Field) ([]uint, bool) {
	if field == nil {
		return nil, false
	}

	rv := db.Statement.ReflectValue
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	ctx := statementContext(db)
	read := func(v reflect.Value) (uint, bool) {
		for v.Kind() == reflect.Ptr {
			if v.IsNil() {
				return 0, false
			}
			v = v.Elem()
		}
		if v.Kind() != reflect.Struct {
			return 0, false
		}
		value, zero := field.ValueOf(ctx, v)
		if zero {
			return 0, false
		}
		id, ok := value.(uint)
		return id, ok
	}

	var ids []uint
	switch rv.Kind() {
	case reflect.Struct:
		id, ok := read(rv)
		if !ok {
			return nil, false
		}
		ids = append(ids, id)
	case reflect.Slice, reflect.Array:
		if rv.Len() == 0 {
			return nil, false
		}
		for i := 0; i < rv.Len(); i++ {
			id, ok := read(rv.Index(i))
			if !ok {
				return nil, false
			}
			ids = append(ids, id)
		}
	default:
		return nil, false
	}
	return ids, true
}
