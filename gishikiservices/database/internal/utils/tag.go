package utils

import (
	"reflect"
	"strings"
)

type DBTag struct {
	Column        string
	PrimaryKey    bool
	AutoIncrement bool
	TypeOverride  string
}

func ParseTag(tagString reflect.StructTag) DBTag {
	parts := strings.Split(tagString.Get("db"), ",")

	tag := DBTag{}

	for i, part := range parts {
		if i == 0 {
			if part != "-" {
				tag.Column = part
			}

			continue
		}

		if part == "primaryKey" {
			tag.PrimaryKey = true

			continue
		}

		if part == "autoIncrement" {
			tag.AutoIncrement = true

			continue
		}

		if strings.HasPrefix(part, "type=") {
			tag.TypeOverride = strings.TrimPrefix(part, "type=")

			continue
		}
	}

	return tag
}
