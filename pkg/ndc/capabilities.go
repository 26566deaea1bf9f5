package ndc

// Version is the NDC protocol version implemented by the connector.
const Version = "0.1.6"

type (
	// Empty marks a capability as supported.
	Empty struct{}

	// CapabilitiesResponse is the body of GET /capabilities.
	CapabilitiesResponse struct {
		Version      string       `json:"version"`
		Capabilities Capabilities `json:"capabilities"`
	}

	// Capabilities lists the optional features the connector supports.
	Capabilities struct {
		Query         QueryCapabilities         `json:"query"`
		Mutation      MutationCapabilities      `json:"mutation"`
		Relationships *RelationshipCapabilities `json:"relationships,omitempty"`
	}

	// QueryCapabilities lists supported query features.
	QueryCapabilities struct {
		Aggregates   *Empty                  `json:"aggregates,omitempty"`
		Variables    *Empty                  `json:"variables,omitempty"`
		Explain      *Empty                  `json:"explain,omitempty"`
		NestedFields NestedFieldCapabilities `json:"nested_fields"`
	}

	// NestedFieldCapabilities lists supported nested field features.
	NestedFieldCapabilities struct {
		FilterBy   *Empty `json:"filter_by,omitempty"`
		OrderBy    *Empty `json:"order_by,omitempty"`
		Aggregates *Empty `json:"aggregates,omitempty"`
	}

	// MutationCapabilities lists supported mutation features.
	MutationCapabilities struct {
		Transactional *Empty `json:"transactional,omitempty"`
		Explain       *Empty `json:"explain,omitempty"`
	}

	// RelationshipCapabilities lists supported relationship features.
	RelationshipCapabilities struct {
		RelationComparisons *Empty `json:"relation_comparisons,omitempty"`
		OrderByAggregate    *Empty `json:"order_by_aggregate,omitempty"`
	}
)

// DefaultCapabilities returns the capabilities advertised by the connector.
func DefaultCapabilities() CapabilitiesResponse {
	return CapabilitiesResponse{
		Version: Version,
		Capabilities: Capabilities{
			Query: QueryCapabilities{
				Aggregates: &Empty{},
				Variables:  &Empty{},
				Explain:    &Empty{},
			},
			Relationships: &RelationshipCapabilities{
				RelationComparisons: &Empty{},
				OrderByAggregate:    &Empty{},
			},
		},
	}
}
