package sqlerr

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/deppfellow/avisos-api/internal/errs"
)

// uniqueKeyPattern matches postgres' default "<table>_<column>_key" names.
var uniqueKeyPattern = regexp.MustCompile(`_([^_]+)_(?:key|ukey)$`)

// ErrCode reports the mapped Code for err, or Other.
func ErrCode(err error) Code {
	var sqlErr *Error
	if errors.As(err, &sqlErr) {
		return sqlErr.Code
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return MapCode(pgErr.Code)
	}
	return Other
}

// ConvertPgError converts a raw PostgreSQL error into an *Error.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),
		Severity:       MapSeverity(src.Severity),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		SchemaName:     src.SchemaName,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		DataTypeName:   src.DataTypeName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}

// generateErrorCode builds "<ENTITY>_<ACTION>" codes such as
// AVISO_ALREADY_EXISTS from the table name and violation type.
func generateErrorCode(tableName string, errType Code) string {
	if tableName == "" {
		tableName = "RECORD"
	}

	domain := strings.ToUpper(tableName)
	if strings.HasSuffix(domain, "S") && len(domain) > 1 {
		domain = domain[:len(domain)-1]
	}

	action := "ERROR"
	switch errType {
	case ForeignKeyViolation:
		action = "NOT_FOUND"
	case UniqueViolation:
		action = "ALREADY_EXISTS"
	case NotNullViolation:
		action = "REQUIRED"
	case CheckViolation, StringDataRightTruncation:
		action = "INVALID"
	}

	return fmt.Sprintf("%s_%s", domain, action)
}

// formatUserFriendlyMessage phrases the error for API clients.
func formatUserFriendlyMessage(sqlErr *Error) string {
	entityName := getEntityName(sqlErr.TableName, sqlErr.ColumnName)
	fieldName := humanizeText(sqlErr.ColumnName)

	switch sqlErr.Code {
	case ForeignKeyViolation:
		return fmt.Sprintf("O registro referenciado (%s) não existe.", entityName)
	case UniqueViolation:
		if column := extractColumnForUniqueViolation(sqlErr.ConstraintName); column != "" {
			return fmt.Sprintf("Já existe um registro (%s) com este %s.", entityName, humanizeText(column))
		}
		return fmt.Sprintf("Já existe um registro (%s) com este identificador.", entityName)
	case NotNullViolation:
		if fieldName == "" {
			return "Um campo obrigatório não foi informado."
		}
		return fmt.Sprintf("O campo %s é obrigatório.", fieldName)
	case CheckViolation:
		if fieldName == "" {
			return "Um ou mais valores não atendem às condições exigidas."
		}
		return fmt.Sprintf("O valor de %s não atende às condições exigidas.", fieldName)
	case StringDataRightTruncation:
		return "Um ou mais valores excedem o tamanho máximo permitido."
	default:
		return errs.MessageInternal
	}
}

// getEntityName infers the entity a row belongs to, preferring a
// "<entity>_id" column over the table name.
func getEntityName(tableName, columnName string) string {
	if columnName != "" && strings.HasSuffix(strings.ToLower(columnName), "_id") {
		return humanizeText(strings.TrimSuffix(strings.ToLower(columnName), "_id"))
	}

	if tableName != "" {
		entity := tableName
		if strings.HasSuffix(entity, "s") && len(entity) > 1 {
			entity = entity[:len(entity)-1]
		}
		return humanizeText(entity)
	}

	return "registro"
}

// humanizeText turns snake_case identifiers into title case:
// "data_criacao" -> "Data Criacao".
func humanizeText(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.BrazilianPortuguese).String(strings.ReplaceAll(text, "_", " "))
}

// extractColumnForUniqueViolation infers the column from the constraint
// name. Supported conventions: "unique_<table>_<column>" and
// "<table>_<column>_key".
func extractColumnForUniqueViolation(constraintName string) string {
	if constraintName == "" {
		return ""
	}

	if strings.HasPrefix(constraintName, "unique_") {
		parts := strings.Split(constraintName, "_")
		if len(parts) >= 3 {
			return parts[len(parts)-1]
		}
	}

	if matches := uniqueKeyPattern.FindStringSubmatch(constraintName); len(matches) > 1 {
		return matches[1]
	}

	return ""
}

// HandleError converts a low-level database error into an *errs.HTTPError.
//
//   - *errs.HTTPError: returned unchanged
//   - *pgconn.PgError: constraint violations become 400, the rest 500
//   - gorm translated errors (duplicated key, foreign key): 400
//   - no rows (pgx, database/sql, gorm): 404
//   - anything else: 500
func HandleError(err error) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		sqlErr := ConvertPgError(pgErr)
		errorCode := generateErrorCode(sqlErr.TableName, sqlErr.Code)
		userMessage := formatUserFriendlyMessage(sqlErr)

		switch sqlErr.Code {
		case ForeignKeyViolation, UniqueViolation, CheckViolation, StringDataRightTruncation:
			return errs.NewBadRequestError(userMessage, &errorCode, nil)

		case NotNullViolation:
			fieldErrors := []errs.FieldError{{
				Field: strings.ToLower(sqlErr.ColumnName),
				Error: userMessage,
			}}
			return errs.NewBadRequestError(userMessage, &errorCode, fieldErrors)

		default:
			return errs.NewInternalServerError()
		}
	}

	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		code := generateErrorCode("", UniqueViolation)
		return errs.NewBadRequestError(formatUserFriendlyMessage(&Error{Code: UniqueViolation}), &code, nil)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		code := generateErrorCode("", ForeignKeyViolation)
		return errs.NewBadRequestError(formatUserFriendlyMessage(&Error{Code: ForeignKeyViolation}), &code, nil)
	case errors.Is(err, pgx.ErrNoRows), errors.Is(err, sql.ErrNoRows), errors.Is(err, gorm.ErrRecordNotFound):
		return errs.NewNotFoundError(errs.MessageNotFound)
	}

	return errs.NewInternalServerError()
}
