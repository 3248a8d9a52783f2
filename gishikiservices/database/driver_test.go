package database_test

import (
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/lunagic/gishiki/gishikiservices/database"
	"gotest.tools/v3/assert"
)

type userRow struct {
	ID      int64   `db:"id,primaryKey,autoIncrement"`
	Name    string  `db:"name"`
	Surname *string `db:"surname"`
}

func (userRow) TableName() string {
	return "Users"
}

type userRowV2 struct {
	userRow
	Email *string `db:"email"`
}

func suiteTables(t *testing.T) (*database.Table, *database.Table, *database.Table) {
	t.Helper()

	users, err := database.TableFromEntity(userRow{})
	assert.NilError(t, err)

	usersV2, err := database.TableFromEntity(userRowV2{})
	assert.NilError(t, err)

	posts, err := database.NewTable("Posts")
	assert.NilError(t, err)
	assert.NilError(t, posts.AddColumn(mustColumn(t, "id", database.TypeBigInt).SetPrimaryKey(true).SetAutoIncrement(true)))
	assert.NilError(t, posts.AddColumn(mustColumn(t, "title", database.TypeText).SetNotNull(true)))
	authorID := mustColumn(t, "author_id", database.TypeBigInt).SetNotNull(true)
	assert.NilError(t, posts.AddColumn(authorID))

	userID, found := users.Column("id")
	assert.Assert(t, found)

	relation, err := database.NewColumnRelation(authorID, users, userID)
	assert.NilError(t, err)
	assert.NilError(t, posts.AddForeignKey(relation))

	return users, usersV2, posts
}

func testSuite(t *testing.T, driver database.Driver, configFuncs ...database.ServiceConfigFunc) {
	configFuncs = append(configFuncs, database.WithLogger(slog.Default()), database.WithLockRetry())
	service, err := database.New(driver, configFuncs...)
	assert.NilError(t, err)
	t.Cleanup(func() {
		_ = service.Close()
	})

	assert.NilError(t, service.Ping(t.Context()))

	users, usersV2, posts := suiteTables(t)

	{ // Assert that the migration actually made changes
		numberOfChanges, err := service.AutoMigrate(t.Context(), []*database.Table{users, posts})
		assert.NilError(t, err)
		assert.Equal(t, numberOfChanges, 2)
	}

	{ // Assert that running the same migration again does not result in any changes
		numberOfChanges, err := service.AutoMigrate(t.Context(), []*database.Table{users, posts})
		assert.NilError(t, err)
		assert.Equal(t, numberOfChanges, 0)
	}

	{ // Assert that new columns are added
		numberOfChanges, err := service.AutoMigrate(t.Context(), []*database.Table{usersV2, posts})
		assert.NilError(t, err)
		assert.Equal(t, numberOfChanges, 1)
	}

	userRepo := database.NewRepository(service, "Users")
	postRepo := database.NewRepository(service, "Posts", "title")

	{ // Seed and read through an alias
		userID, err := userRepo.Insert(t.Context(), map[string]any{
			"name":    "Mario",
			"surname": "Rossi",
		})
		assert.NilError(t, err)
		assert.Equal(t, userID, int64(1))

		records, err := service.ReadSelective(t.Context(), "Users person", []string{"name", "surname"}, nil, nil)
		assert.NilError(t, err)
		assert.DeepEqual(t, records, []database.Record{
			{"name": "Mario", "surname": "Rossi"},
		})
	}

	{ // Assert that a user crud methods work
		email := uuid.NewString()

		userID, err := userRepo.Insert(t.Context(), map[string]any{
			"name":  "Luigi",
			"email": email,
		})
		assert.NilError(t, err)
		assert.Equal(t, userID, int64(2))

		{ // Get the user by ID
			record, err := service.ReadSingle(t.Context(), "Users", []string{"name", "email", "surname"}, database.Select(map[string]any{"id": userID}))
			assert.NilError(t, err)
			assert.DeepEqual(t, record, database.Record{"name": "Luigi", "email": email, "surname": nil})
		}

		{ // Update
			newEmail := uuid.NewString()
			affected, err := userRepo.Update(t.Context(), map[string]any{"email": newEmail}, database.Select(map[string]any{"id": userID}))
			assert.NilError(t, err)
			assert.Equal(t, affected, int64(1))

			record, err := service.ReadSingle(t.Context(), "Users", []string{"email"}, database.Select(map[string]any{"id": userID}))
			assert.NilError(t, err)
			assert.Equal(t, record["email"], newEmail)
		}

		{ // Filter, order and page
			records, err := service.ReadSelective(
				t.Context(),
				"Users",
				[]string{"name"},
				database.NewSelectionCriteria().
					AndWhere("name", database.InRange, []string{"Mario", "Luigi", "Peach"}).
					OrWhere("surname", database.IsNotNull, nil),
				database.NewResultModifier().Order("name", database.Ascending).Limit(1).Skip(1),
			)
			assert.NilError(t, err)
			assert.DeepEqual(t, records, []database.Record{{"name": "Mario"}})
		}

		{ // Delete
			affected, err := userRepo.Delete(t.Context(), database.Select(map[string]any{"id": userID}))
			assert.NilError(t, err)
			assert.Equal(t, affected, int64(1))
		}

		{ // Read again to confirm it's gone
			_, err := userRepo.FindOne(t.Context(), database.Select(map[string]any{"id": userID}))
			assert.ErrorIs(t, err, database.ErrNoRows)
		}

		{ // Deleting without criteria is refused
			_, err := userRepo.Delete(t.Context(), database.NewSelectionCriteria())
			assert.ErrorIs(t, err, database.ErrInvalidArgument)
		}
	}

	{ // Assert that foreign key relationships work when deleting
		authorID, err := userRepo.Insert(t.Context(), map[string]any{"name": "Peach"})
		assert.NilError(t, err)

		_, err = postRepo.Insert(t.Context(), map[string]any{
			"title":     "Hello",
			"author_id": authorID,
		})
		assert.NilError(t, err)

		byAuthor := database.Select(map[string]any{"author_id": authorID})

		records, err := postRepo.Find(t.Context(), byAuthor, nil)
		assert.NilError(t, err)
		assert.DeepEqual(t, records, []database.Record{{"title": "Hello"}})

		_, err = userRepo.Delete(t.Context(), database.Select(map[string]any{"id": authorID}))
		assert.NilError(t, err)

		records, err = postRepo.Find(t.Context(), byAuthor, nil)
		assert.NilError(t, err)
		assert.Equal(t, len(records), 0)
	}

	{ // Empty the tables
		_, err := postRepo.DeleteAll(t.Context())
		assert.NilError(t, err)

		_, err = userRepo.DeleteAll(t.Context())
		assert.NilError(t, err)

		records, err := userRepo.Find(t.Context(), nil, nil)
		assert.NilError(t, err)
		assert.Equal(t, len(records), 0)
	}

	{ // Drop the tables
		assert.NilError(t, service.DropTable(t.Context(), "Posts"))
		assert.NilError(t, service.DropTable(t.Context(), "Users"))

		numberOfChanges, err := service.AutoMigrate(t.Context(), []*database.Table{users})
		assert.NilError(t, err)
		assert.Equal(t, numberOfChanges, 1)
	}
}
