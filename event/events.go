package event

import (
	"github.com/fundwit/go-commons/types"
)

func NewEventRecord(id types.ID, sourceType string, sourceId types.ID, sourceDesc string, category EventCategory,
	updatedProperties []UpdatedProperty, updatedRelations []UpdatedRelation,
	creatorId types.ID, creatorName string, timestamp types.Timestamp) *EventRecord {

	return &EventRecord{
		ID: id,
		Event: Event{
			SourceType: sourceType,
			SourceId:   sourceId,
			SourceDesc: sourceDesc,

			EventCategory:     category,
			UpdatedProperties: updatedProperties,
			UpdatedRelations:  updatedRelations,

			CreatorId:   creatorId,
			CreatorName: creatorName,
		},
		Synced:    false,
		Timestamp: timestamp,
	}
}

// PropertyChange builds a single updated property whose values are also their descriptions.
func PropertyChange(name, oldValue, newValue string) UpdatedProperty {
	return UpdatedProperty{PropertyName: name, PropertyDesc: name,
		OldValue: oldValue, OldValueDesc: oldValue, NewValue: newValue, NewValueDesc: newValue}
}
