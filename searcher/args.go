package searcher

// Hyperparameters for MCTS

const CSquared = 2.0 // Exploration constant

const Win = 1.0  // Reward for a won playout
const Loss = 0.0 // Reward for a lost playout, also the virtual loss

// MaxCutoff bounds a rollout when no cutoff is configured.
const MaxCutoff = 1000
