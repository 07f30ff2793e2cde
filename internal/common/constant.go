package common

// MetadataKeyFamilyCode is the local metadata key holding the active family code.
const MetadataKeyFamilyCode = "family_code"
