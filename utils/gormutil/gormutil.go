package gormutil

import (
	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

const errMySQLDuplicatedRecord uint16 = 1062

// IsMySQLDuplicatedRecordErr MySQL重複レコードエラーかどうか
func IsMySQLDuplicatedRecordErr(err error) bool {
	mErr, ok := err.(*mysql.MySQLError)
	if !ok {
		return false
	}
	return mErr.Number == errMySQLDuplicatedRecord
}

// RecordExists 指定した条件のレコードが1行以上存在するかどうか
func RecordExists(db *gorm.DB, where interface{}) (exists bool, err error) {
	return Exists(db.Model(where).Where(where))
}

// Exists 行数が1行以上かどうかを返します
func Exists(db *gorm.DB) (exists bool, err error) {
	n, err := Count(db.Limit(1))
	return n > 0, err
}

// Count 行数を数えます
func Count(db *gorm.DB) (n int64, err error) {
	return n, db.Count(&n).Error
}
