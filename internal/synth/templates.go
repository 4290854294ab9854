package synth

import "github.com/Sumatoshi-tech/recheck/internal/patterns"

// documentHelperSource is the canonical implementation of the document
// helper referenced by the objectid-access rule.
const documentHelperSource = `import { Types } from 'mongoose';

export interface WithDocumentId {
  _id: Types.ObjectId;
}

export function asDocument<T>(value: T): T & WithDocumentId {
  return value as T & WithDocumentId;
}
`

// RegisterDefaultTemplates installs the canonical sources for every utility
// the built-in rule set can require.
func RegisterDefaultTemplates(s *Synthesizer) {
	s.RegisterTemplate(patterns.UtilityDocumentHelper, Template{
		Filename: "document.ts",
		Source:   documentHelperSource,
	})
}
