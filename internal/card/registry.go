package card

import (
	"fmt"

	"github.com/leapstack-labs/cardfile/pkg/schema"
)

// NewRegistry returns a registry holding every card file type.
func NewRegistry() *schema.Registry {
	reg, err := schema.NewRegistry(
		gameType,
		styleSheetType,
		setType,
		cardType,
		dependencyType,
		textFieldType,
		choiceFieldType,
		choiceType,
		booleanFieldType,
		statsDimensionType,
		statsCategoryType,
		packTypeType,
		packItemType,
		keywordType,
		wordListType,
		wordType,
		fontFileType,
	)
	if err != nil {
		panic(fmt.Sprintf("card: %v", err))
	}
	return reg
}
