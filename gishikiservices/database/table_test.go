package database_test

import (
	"testing"
	"time"

	"github.com/lunagic/gishiki/gishikiservices/database"
	"gotest.tools/v3/assert"
)

func mustColumn(t *testing.T, name string, columnType database.ColumnType) *database.Column {
	t.Helper()

	column, err := database.NewColumn(name, columnType)
	assert.NilError(t, err)

	return column
}

func TestTableDuplicateColumn(t *testing.T) {
	table, err := database.NewTable("Users")
	assert.NilError(t, err)

	assert.NilError(t, table.AddColumn(mustColumn(t, "name", database.TypeText)))

	err = table.AddColumn(mustColumn(t, "name", database.TypeText))
	assert.ErrorIs(t, err, database.ErrSchemaConflict)
	assert.ErrorType(t, err, database.ErrDuplicateColumn{})
	assert.Equal(t, len(table.Columns()), 1)
}

func TestTableColumnsAreCopies(t *testing.T) {
	table, err := database.NewTable("Users")
	assert.NilError(t, err)
	assert.NilError(t, table.AddColumn(mustColumn(t, "id", database.TypeInteger)))

	columns := table.Columns()
	columns[0] = nil

	assert.Assert(t, table.Columns()[0] != nil)
}

func TestColumnSetType(t *testing.T) {
	column := mustColumn(t, "price", database.TypeReal)

	assert.NilError(t, column.SetType(database.TypeMoney))
	assert.Equal(t, column.Type(), database.TypeMoney)

	err := column.SetType(database.ColumnType(99))
	assert.ErrorType(t, err, database.ErrUnsupportedType{})
	assert.Equal(t, column.Type(), database.TypeMoney)

	_, err = database.NewColumn("broken", database.ColumnType(0))
	assert.ErrorIs(t, err, database.ErrSchemaConflict)
}

func TestParseColumnType(t *testing.T) {
	columnType, err := database.ParseColumnType("money")
	assert.NilError(t, err)
	assert.Equal(t, columnType, database.TypeMoney)

	_, err = database.ParseColumnType("geometry")
	assert.ErrorType(t, err, database.ErrUnsupportedType{})
}

func TestForeignKeys(t *testing.T) {
	users, err := database.NewTable("Users")
	assert.NilError(t, err)
	userID := mustColumn(t, "id", database.TypeInteger).SetPrimaryKey(true).SetAutoIncrement(true)
	userName := mustColumn(t, "name", database.TypeText)
	assert.NilError(t, users.AddColumn(userID))
	assert.NilError(t, users.AddColumn(userName))

	posts, err := database.NewTable("Posts")
	assert.NilError(t, err)
	author := mustColumn(t, "author_id", database.TypeInteger)
	editor := mustColumn(t, "editor_id", database.TypeInteger)
	assert.NilError(t, posts.AddColumn(author))
	assert.NilError(t, posts.AddColumn(editor))

	{ // Foreign column must be a primary key
		_, err := database.NewColumnRelation(author, users, userName)
		assert.ErrorIs(t, err, database.ErrInvalidArgument)
	}

	{ // Foreign column must belong to the foreign table
		_, err := database.NewColumnRelation(author, posts, userID)
		assert.ErrorIs(t, err, database.ErrInvalidArgument)
	}

	{ // Local column must belong to the table
		relation, err := database.NewColumnRelation(userName, posts, editor)
		assert.Assert(t, relation == nil)
		assert.ErrorIs(t, err, database.ErrInvalidArgument)
	}

	relation, err := database.NewColumnRelation(author, users, userID)
	assert.NilError(t, err)
	assert.NilError(t, posts.AddForeignKey(relation))
	assert.Equal(t, author.Relation(), relation)

	{ // A second key to the same target is a conflict
		second, err := database.NewColumnRelation(editor, users, userID)
		assert.NilError(t, err)

		err = posts.AddForeignKey(second)
		assert.ErrorType(t, err, database.ErrDuplicateForeignKey{})
		assert.ErrorIs(t, err, database.ErrSchemaConflict)
	}

	{ // The relation must start from one of the table's columns
		err := users.AddForeignKey(relation)
		assert.ErrorIs(t, err, database.ErrInvalidArgument)
	}

	assert.Equal(t, len(posts.ForeignKeys()), 1)
}

type article struct {
	ID          int64      `db:"id,primaryKey,autoIncrement"`
	Title       string     `db:"title"`
	Price       float64    `db:"price,type=money"`
	PublishedAt *time.Time `db:"published_at"`
	Body        []byte     `db:"body"`
	Draft       bool       `db:"draft"`
	Ignored     string     `db:"-"`
	Untagged    string
	hidden      string `db:"hidden"`
}

func (article) TableName() string {
	return "articles"
}

func TestTableFromEntity(t *testing.T) {
	table, err := database.TableFromEntity(article{})
	assert.NilError(t, err)
	assert.Equal(t, table.Name(), "articles")

	type expectation struct {
		Name          string
		Type          database.ColumnType
		NotNull       bool
		PrimaryKey    bool
		AutoIncrement bool
	}

	actual := []expectation{}
	for _, column := range table.Columns() {
		actual = append(actual, expectation{
			Name:          column.Name(),
			Type:          column.Type(),
			NotNull:       column.NotNull(),
			PrimaryKey:    column.PrimaryKey(),
			AutoIncrement: column.AutoIncrement(),
		})
	}

	assert.DeepEqual(t, actual, []expectation{
		{Name: "id", Type: database.TypeBigInt, NotNull: true, PrimaryKey: true, AutoIncrement: true},
		{Name: "title", Type: database.TypeText, NotNull: true},
		{Name: "price", Type: database.TypeMoney, NotNull: true},
		{Name: "published_at", Type: database.TypeDateTime},
		{Name: "body", Type: database.TypeBlob, NotNull: true},
		{Name: "draft", Type: database.TypeBoolean, NotNull: true},
	})
}

type unsupportedEntity struct {
	Tags map[string]string `db:"tags"`
}

func (unsupportedEntity) TableName() string {
	return "unsupported"
}

func TestTableFromEntityUnsupportedType(t *testing.T) {
	_, err := database.TableFromEntity(unsupportedEntity{})
	assert.ErrorType(t, err, database.ErrUnsupportedType{})
}
