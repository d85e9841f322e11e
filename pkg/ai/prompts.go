package ai

// ExtractPrompt is the system instruction for structured entity and
// relationship extraction from a single text chunk.
const ExtractPrompt = `You are a knowledge graph extractor. Extract entities (nodes) and relationships from the text.
Focus on key concepts, people, organizations, and their interactions.

# Rules
- Every entity has an "id" (its canonical display name) and a "type" (a short category label such as Person, Organization, Concept).
- Every relationship connects two extracted entity ids with a "type" (e.g. WORKS_FOR, LOCATED_IN) and a brief "description" of the context in which it appears.
- Only relate entities that you also list in the entities array.
- Do not invent information that is not present in the text.

Return the result in a structured JSON format matching the schema.`

// RecognizePrompt asks the model for the entities a user query is about.
// The answer must be machine-splittable, so the format constraint matters
// more than prose quality here.
const RecognizePrompt = `Extract the main entities (people, organizations, concepts) from this query as a comma-separated list: %s`

// AnswerPrompt is the final grounded-generation template. The context
// block contains the labeled vector and graph sections assembled by the
// answer chain.
const AnswerPrompt = `Answer the question based only on the following context:
%s

Question: %s`
