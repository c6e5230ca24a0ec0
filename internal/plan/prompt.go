package plan

// planningPrompt is the prompt template for proposing work areas.
// Interpolated with the existing area summary and the user goal.
const planningPrompt = `Break this goal into work areas that independent agents can claim and complete in parallel.

Goal:
%s

Existing work areas (reference them by id in dependencies where relevant):
%s

Return ONLY a JSON array of areas with this exact structure (no other text):
[
  {
    "name": "short-unique-name",
    "category": "FEAT",
    "description": "What this area covers and when it is done",
    "priority": "HIGH|MEDIUM|LOW",
    "dependencies": ["name of another proposed area", "FEAT-001"]
  }
]

Rules:
- category is an uppercase tag like FEAT, FIX, DOCS, INFRA
- dependencies may reference other proposals by their "name" or existing areas by id
- only add a dependency when the work truly cannot start first
- areas should be independent wherever possible so agents can work in parallel
- each area should be completable by a single agent on a single branch
- use [] for dependencies when there are none`
